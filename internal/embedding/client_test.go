package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sirpickle/index-server/internal/apperr"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"newlines collapsed", "line one\nline two\r\nline three", "line one line two line three"},
		{"newline runs", "a\n\n\nb", "a b"},
		{"trimmed", "  \n text \n ", "text"},
		{"only whitespace", " \n\r\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	c := NewClient(Options{APIKey: "test-key", Model: "test"}, zap.NewNop().Sugar())

	_, err := c.Embed(context.Background(), " \n ", TaskDocument)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestEmbedUnconfiguredProvider(t *testing.T) {
	c := NewClient(Options{Model: "test"}, zap.NewNop().Sugar())

	_, err := c.Embed(context.Background(), "some text", TaskQuery)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestTaskPrefixesDiffer(t *testing.T) {
	assert.NotEqual(t, TaskDocument.prefix(), TaskQuery.prefix())
}
