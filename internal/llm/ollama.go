package llm

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/sirpickle/index-server/internal/apperr"
)

// Ollama generates text through a local or remote Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama builds the Ollama backend against the given host
// (e.g. "http://localhost:11434").
func NewOllama(host, model string) (*Ollama, error) {
	var base *url.URL
	if host == "" {
		base = &url.URL{Scheme: "http", Host: "localhost:11434"}
	} else {
		u, err := url.Parse(strings.TrimSuffix(host, "/"))
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "invalid ollama host", err)
		}
		base = u
	}
	return &Ollama{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	req := api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Options: map[string]any{
			"temperature": 0.1,
			"num_predict": 2048,
		},
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, werr := sb.WriteString(resp.Response)
		return werr
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "ollama call failed", err)
	}
	if sb.Len() == 0 {
		return "", apperr.New(apperr.KindBadUpstream, "ollama returned no content")
	}
	return sb.String(), nil
}
