package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv          = "CLIPSYNC_CONFIG"
	serverAddrEnv          = "CLIPSYNC_ADDR"
	logLevelEnv            = "CLIPSYNC_LOG_LEVEL"
	databaseDSNEnv         = "DATABASE_DSN"
	notionAPIKeyEnv        = "NOTION_API_KEY"
	notionDatabaseIDEnv    = "NOTION_DATABASE_ID"
	cloudinaryCloudEnv     = "CLOUDINARY_CLOUD_NAME"
	cloudinaryKeyEnv       = "CLOUDINARY_API_KEY"
	cloudinarySecretEnv    = "CLOUDINARY_API_SECRET"
	firecrawlAPIKeyEnv     = "FIRECRWL_API_KEY" // original deployment spelling
	instagramSessionEnv    = "INSTAGRAM_SESSION_FILE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Notion     NotionConfig     `yaml:"notion"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl"`
	Instagram  InstagramConfig  `yaml:"instagram"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the optional publish-history Postgres connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotionConfig wires all data required to reach the Notion API.
type NotionConfig struct {
	APIKey     string `yaml:"apiKey"`
	DatabaseID string `yaml:"databaseId"`
	BaseURL    string `yaml:"baseUrl"`
}

// CloudinaryConfig describes image-rehosting credentials.
type CloudinaryConfig struct {
	CloudName string `yaml:"cloudName"`
	APIKey    string `yaml:"apiKey"`
	APISecret string `yaml:"apiSecret"`
}

// FirecrawlConfig defines how to contact the Firecrawl scrape API.
// When the key is empty the generic-web strategy extracts locally.
type FirecrawlConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// InstagramConfig points at a previously saved login session. Sessions are
// read, never created; login flows live outside this service.
type InstagramConfig struct {
	SessionFile string `yaml:"sessionFile"`
}

// Load reads .env, YAML configuration (if present), and environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(notionAPIKeyEnv); v != "" {
		c.Notion.APIKey = v
	}
	if v := os.Getenv(notionDatabaseIDEnv); v != "" {
		c.Notion.DatabaseID = v
	}

	if v := os.Getenv(cloudinaryCloudEnv); v != "" {
		c.Cloudinary.CloudName = v
	}
	if v := os.Getenv(cloudinaryKeyEnv); v != "" {
		c.Cloudinary.APIKey = v
	}
	if v := os.Getenv(cloudinarySecretEnv); v != "" {
		c.Cloudinary.APISecret = v
	}

	if v := os.Getenv(firecrawlAPIKeyEnv); v != "" {
		c.Firecrawl.APIKey = v
	}

	if v := os.Getenv(instagramSessionEnv); v != "" {
		c.Instagram.SessionFile = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notion.APIKey != "" {
		base.Notion.APIKey = override.Notion.APIKey
	}
	if override.Notion.DatabaseID != "" {
		base.Notion.DatabaseID = override.Notion.DatabaseID
	}
	if override.Notion.BaseURL != "" {
		base.Notion.BaseURL = override.Notion.BaseURL
	}

	if override.Cloudinary.CloudName != "" {
		base.Cloudinary.CloudName = override.Cloudinary.CloudName
	}
	if override.Cloudinary.APIKey != "" {
		base.Cloudinary.APIKey = override.Cloudinary.APIKey
	}
	if override.Cloudinary.APISecret != "" {
		base.Cloudinary.APISecret = override.Cloudinary.APISecret
	}

	if override.Firecrawl.Endpoint != "" {
		base.Firecrawl.Endpoint = override.Firecrawl.Endpoint
	}
	if override.Firecrawl.APIKey != "" {
		base.Firecrawl.APIKey = override.Firecrawl.APIKey
	}

	if override.Instagram.SessionFile != "" {
		base.Instagram.SessionFile = override.Instagram.SessionFile
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8000"},
		Logging: LoggingConfig{Level: "info"},
		Notion: NotionConfig{
			BaseURL: "https://api.notion.com",
		},
		Firecrawl: FirecrawlConfig{
			Endpoint: "https://api.firecrawl.dev/v1/scrape",
		},
		Instagram: InstagramConfig{
			SessionFile: "instagram_session.json",
		},
	}
}
