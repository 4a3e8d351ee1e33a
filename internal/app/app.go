// Package app builds the long-lived components of logbot from a Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/logbot/logbot/internal/chat"
	"github.com/logbot/logbot/internal/config"
	"github.com/logbot/logbot/internal/embedding"
	"github.com/logbot/logbot/internal/fallback"
	"github.com/logbot/logbot/internal/hfinference"
	"github.com/logbot/logbot/internal/llm"
	"github.com/logbot/logbot/internal/logschema"
	"github.com/logbot/logbot/internal/logstore"
	"github.com/logbot/logbot/internal/relevance"
	"github.com/logbot/logbot/internal/security"
	"github.com/logbot/logbot/internal/summarizer"
	"github.com/logbot/logbot/internal/translator"
	"github.com/rs/zerolog/log"
)

// App holds everything a server or CLI session needs. Close releases the
// clients it owns.
type App struct {
	Config     *config.Config
	Schema     *logschema.Schema
	Store      logstore.Executor
	Model      llm.Model
	Embedder   embedding.Embedder
	Controller *chat.Controller

	SQLValidator *security.SQLValidator
	DataMasker   *security.DataMasker
	AuditLogger  *security.AuditLogger

	closers []func() error
}

// New builds an App. On error everything already opened is closed.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg, Schema: logschema.Default()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.SQLValidator = security.NewSQLValidator()
	a.DataMasker = security.NewDataMasker(cfg.SensitiveColumns)
	a.AuditLogger = security.NewAuditLogger(cfg.EnableAuditLogging)
	costTracker := security.NewCostTracker(cfg.MaxQueryBytesProcessed)

	if a.Store, err = OpenStore(ctx, cfg, costTracker); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Store.Close)

	if a.Model, err = NewModel(cfg); err != nil {
		return nil, err
	}

	var hf *hfinference.Client
	if cfg.HFAPIToken != "" {
		hf = hfinference.New(cfg.HFBaseURL, cfg.HFAPIToken, cfg.LLMTimeout)
	}
	if a.Embedder, err = NewEmbedder(cfg, hf); err != nil {
		return nil, err
	}
	if a.Embedder != nil {
		a.closers = append(a.closers, a.Embedder.Close)
	}

	deps := relevance.Deps{
		Embedder:      a.Embedder,
		ZeroShotModel: cfg.HFZeroShotModel,
		Model:         a.Model,
		Schema:        a.Schema,
	}
	if hf != nil {
		deps.ZeroShot = hf
	}
	classifier, err := relevance.New(ctx, relevance.Strategy(cfg.RelevanceStrategy), deps)
	if err != nil {
		return nil, fmt.Errorf("relevance: %w", err)
	}
	chartGate, err := relevance.NewChartGate(ctx, a.Embedder)
	if err != nil {
		return nil, fmt.Errorf("chart gate: %w", err)
	}

	pipeline := chat.Deps{
		Prompts:    security.NewPromptValidator(cfg.MaxPromptLength),
		Relevance:  classifier,
		ChartGate:  chartGate,
		Translator: translator.New(a.Model, a.Schema, a.Store.Dialect()),
		Validator:  a.SQLValidator,
		Executor:   a.Store,
		Summarizer: summarizer.New(a.Model,
			summarizer.WithCutoff(cfg.SummaryCutoff),
			summarizer.WithPlaceholder(cfg.SummaryPlaceholder)),
		Fallback: fallback.New(a.Model),
		Audit:    a.AuditLogger,
	}
	if cfg.EnablePIIDetection {
		pipeline.PII = security.NewPIIDetector(cfg.PIIKeywords)
	}
	if cfg.EnableDataMasking {
		pipeline.Masker = a.DataMasker
	}
	if a.Controller, err = chat.New(pipeline, chat.NewStore(), cfg.TurnTimeout); err != nil {
		return nil, err
	}

	log.Info().
		Str("store", cfg.StoreDriver).
		Str("dialect", a.Store.Dialect()).
		Str("model", a.Model.Name()).
		Str("relevance", cfg.RelevanceStrategy).
		Str("embedding", cfg.EmbeddingProvider).
		Bool("data_masking", cfg.EnableDataMasking).
		Bool("pii_detection", cfg.EnablePIIDetection).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("langsmith_key", cfg.LangSmithAPIKey != "").
		Msg("logbot configured")
	return a, nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewModel returns the configured text model.
func NewModel(cfg *config.Config) (llm.Model, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		return llm.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL, cfg.AnthropicMaxTokens), nil
	case "groq":
		return llm.NewOpenAICompatible(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.LLMTimeout), nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
}

// NewEmbedder returns the configured sentence embedder wrapped in a cache,
// or nil for provider "none".
func NewEmbedder(cfg *config.Config, hf *hfinference.Client) (embedding.Embedder, error) {
	var inner embedding.Embedder
	switch cfg.EmbeddingProvider {
	case "none", "":
		return nil, nil
	case "hf":
		if hf == nil {
			return nil, errors.New("embedding provider hf needs HF_API_TOKEN")
		}
		inner = hfinference.NewEmbedder(hf, cfg.HFEmbeddingModel)
	case "onnx":
		e, err := embedding.NewONNX(embedding.ONNXConfig{
			ModelPath:   cfg.ONNXModelPath,
			VocabPath:   cfg.ONNXVocabPath,
			LibraryPath: cfg.ONNXLibraryPath,
			Threads:     cfg.ONNXThreads,
		})
		if err != nil {
			return nil, err
		}
		inner = e
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
	return embedding.NewCached(inner, cfg.EmbeddingCacheSize), nil
}
