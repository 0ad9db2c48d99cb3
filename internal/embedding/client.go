// Package embedding wraps an OpenAI-compatible embeddings API.
package embedding

import (
	"context"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sirpickle/index-server/internal/apperr"
)

// Task selects the embedding task hint. Embedding a query in document mode
// (or vice versa) degrades retrieval quality, so callers must pick the mode
// that matches the text's role.
type Task int

const (
	TaskDocument Task = iota
	TaskQuery
)

// Instruction prefixes understood by instruction-tuned embedding models.
// They stand in for the task-type parameter of embedding APIs that expose
// one natively.
func (t Task) prefix() string {
	if t == TaskQuery {
		return "search_query: "
	}
	return "search_document: "
}

// Client turns text into fixed-dimension vectors.
type Client interface {
	Embed(ctx context.Context, text string, task Task) ([]float32, error)
}

var newlineRuns = regexp.MustCompile(`[\r\n]+`)

// Normalize collapses newline runs to single spaces and trims the result.
func Normalize(text string) string {
	return strings.TrimSpace(newlineRuns.ReplaceAllString(text, " "))
}

type openAIClient struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	timeout    time.Duration
	maxRetries int
	log        *zap.SugaredLogger
}

// Options configures the OpenAI-compatible embedding client.
type Options struct {
	APIKey     string
	BaseURL    string // empty for api.openai.com
	Model      string
	Dimensions int
	Timeout    time.Duration
	MaxRetries int
}

// NewClient builds a client against an OpenAI-compatible embeddings endpoint.
// A missing API key does not fail construction; Embed reports the provider as
// unavailable instead, so the caller can retry after configuration changes.
func NewClient(opts Options, log *zap.SugaredLogger) Client {
	var inner *openai.Client
	if opts.APIKey != "" {
		cfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
		inner = openai.NewClientWithConfig(cfg)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 2
	}
	return &openAIClient{
		client:     inner,
		model:      openai.EmbeddingModel(opts.Model),
		dimensions: opts.Dimensions,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		log:        log,
	}
}

func (c *openAIClient) Embed(ctx context.Context, text string, task Task) ([]float32, error) {
	cleaned := Normalize(text)
	if cleaned == "" {
		return nil, apperr.New(apperr.KindValidation, "cannot embed empty text")
	}
	if c.client == nil {
		return nil, apperr.New(apperr.KindUnavailable, "embedding provider not configured")
	}

	input := task.prefix() + cleaned

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperr.Wrap(apperr.KindUnavailable, "embedding call cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		vec, err := c.embedOnce(ctx, input)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		c.log.Warnw("embedding attempt failed", "attempt", attempt, "error", err)
	}

	return nil, apperr.Wrap(apperr.KindUnavailable, "embedding call failed", lastErr)
}

func (c *openAIClient) embedOnce(ctx context.Context, input string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      c.model,
		Input:      []string{input},
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, apperr.New(apperr.KindBadUpstream, "embedding response contained no vectors")
	}
	return resp.Data[0].Embedding, nil
}
