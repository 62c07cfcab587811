package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tangpeiwen/clipsync/internal/compose"
	"github.com/tangpeiwen/clipsync/internal/detect"
	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/extract"
	"github.com/tangpeiwen/clipsync/internal/images"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

// Result is the structured outcome of one publish attempt. The pipeline
// never returns errors: every failure mode becomes a Result with Success
// set to false and a user-facing message.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// PipelineDeps wires all collaborators into the publish pipeline.
type PipelineDeps struct {
	Store     ports.DocumentStore
	Extractor *extract.Service
	Resolver  *images.Resolver
	Composer  *compose.Composer
	History   ports.PublishLog
	Logger    *slog.Logger
}

// Pipeline implements the publish workflow: verify the destination schema,
// classify the input, extract, resolve images, compose, and create the page.
type Pipeline struct {
	store     ports.DocumentStore
	extractor *extract.Service
	resolver  *images.Resolver
	composer  *compose.Composer
	history   ports.PublishLog
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		store:     deps.Store,
		extractor: deps.Extractor,
		resolver:  deps.Resolver,
		composer:  deps.Composer,
		history:   deps.History,
		logger:    deps.Logger,
	}
}

// Process runs one publish attempt end to end. Each invocation is an
// isolated execution; nothing is shared across requests but the wired
// collaborators.
func (p *Pipeline) Process(ctx context.Context, content, databaseID string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.error("pipeline panicked", "panic", r)
			result = Result{Success: false, Message: fmt.Sprintf("处理内容时出错: %v", r)}
		}
	}()

	if err := compose.VerifySchema(ctx, p.store, databaseID); err != nil {
		return Result{
			Success: false,
			Message: fmt.Sprintf("Notion数据库结构不符合要求: %s", err.Error()),
		}
	}

	classified := detect.Classify(content)
	p.debug("content classified", "kind", classified.Kind, "platform", classified.Platform)

	extracted := p.extractor.Extract(ctx, classified)
	if !extracted.Success {
		p.warn("extraction failed", "platform", classified.Platform, "error", extracted.Error)
		return Result{
			Success: false,
			Message: "无法提取内容，可能是不支持的平台或链接无效",
			Data:    map[string]any{"extracted_data": extracted},
		}
	}

	resolved := p.resolver.ResolveAll(ctx, extracted.Images)

	page := p.composer.Compose(extracted, resolved)

	pageID, err := p.store.CreatePage(ctx, databaseID, page)
	if err != nil {
		p.error("page creation failed", "error", err)
		return Result{
			Success: false,
			Message: fmt.Sprintf("无法创建Notion页面: %s", err.Error()),
			Data:    map[string]any{"extracted_data": extracted},
		}
	}

	p.record(ctx, databaseID, pageID, extracted)

	return Result{
		Success: true,
		Message: "成功处理内容并同步到Notion",
		Data: map[string]any{
			"extracted_data": extracted,
			"notion_page_id": pageID,
		},
	}
}

// record appends the publish to the history log. Failures are logged and
// swallowed: the page already exists, the audit row is best-effort.
func (p *Pipeline) record(ctx context.Context, databaseID, pageID string, content domain.NormalizedContent) {
	if p.history == nil {
		return
	}

	err := p.history.Record(ctx, domain.Publication{
		ID:         uuid.NewString(),
		Kind:       string(content.Kind),
		Source:     content.Source,
		Title:      content.Title,
		PageID:     pageID,
		DatabaseID: databaseID,
		Tags:       content.Tags,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		p.warn("publish history not recorded", "page_id", pageID, "error", err)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
