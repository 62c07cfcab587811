package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tangpeiwen/clipsync/internal/app"
	"github.com/tangpeiwen/clipsync/internal/config"
	"github.com/tangpeiwen/clipsync/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "clipsync",
	Short: "Republish social content into Notion",
	Long: `clipsync accepts pasted text or a social/content URL, extracts normalized
content from the source platform, and republishes it as a structured page
in a Notion database.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var (
	flagDatabase string

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a Notion database against the required property shape",
		RunE:  runVerify,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)

	verifyCmd.Flags().StringVar(&flagDatabase, "database", "", "Notion database ID (default: configured database)")
	rootCmd.AddCommand(verifyCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger)

	if err := application.VerifyDatabase(cmd.Context(), flagDatabase); err != nil {
		fmt.Fprintf(os.Stderr, "数据库结构验证失败: %v\n", err)
		return fmt.Errorf("database verification failed")
	}

	fmt.Println("数据库结构验证通过")
	return nil
}
