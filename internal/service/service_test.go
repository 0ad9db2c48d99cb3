package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sirpickle/index-server/internal/apperr"
	"github.com/sirpickle/index-server/internal/embedding"
	"github.com/sirpickle/index-server/internal/models"
	"github.com/sirpickle/index-server/internal/store"
)

type fakeStore struct {
	videos  map[string]*models.Video
	chunks  []models.Chunk
	nextID  int
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{videos: map[string]*models.Video{}}
}

func (f *fakeStore) InsertVideo(_ context.Context, v *models.Video) (string, error) {
	if f.failPut {
		return "", fmt.Errorf("write refused")
	}
	f.nextID++
	id := fmt.Sprintf("vid-%d", f.nextID)
	cp := *v
	cp.ID = id
	f.videos[id] = &cp
	return id, nil
}

func (f *fakeStore) InsertChunk(_ context.Context, c *models.Chunk) error {
	f.chunks = append(f.chunks, *c)
	return nil
}

func (f *fakeStore) SearchChunks(_ context.Context, _ []float32, k int) ([]models.RetrievedChunk, error) {
	out := make([]models.RetrievedChunk, 0, k)
	for _, c := range f.chunks {
		if len(out) == k {
			break
		}
		v := f.videos[c.VideoID]
		out = append(out, models.RetrievedChunk{
			VideoID:    c.VideoID,
			VideoTitle: c.VideoTitle,
			Text:       c.Text,
			VideoURL:   v.VideoURL,
			Tags:       v.Tags,
			Category:   v.Category,
			Similarity: 0.9,
		})
	}
	return out, nil
}

func (f *fakeStore) SearchTranscripts(_ context.Context, keyword string) ([]models.Video, error) {
	var out []models.Video
	lower := strings.ToLower(keyword)
	for _, v := range f.videos {
		if strings.Contains(strings.ToLower(v.Transcript), lower) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeStore) GetVideo(_ context.Context, id string) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) ListVideos(_ context.Context) ([]models.Video, error) {
	out := make([]models.Video, 0, len(f.videos))
	for _, v := range f.videos {
		cp := *v
		cp.Transcript = ""
		out = append(out, cp)
	}
	return out, nil
}

type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string, _ embedding.Task) ([]float32, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("provider down")
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Generate(context.Context, string) (string, error) { return f.reply, f.err }
func (f *fakeLLM) Name() string                                     { return "fake" }

func newService(t *testing.T, st *fakeStore, emb *fakeEmbedder, gen *fakeLLM) *Service {
	t.Helper()
	return New(st, emb, gen, Config{
		ChunkSize:       30,
		ChunkOverlap:    5,
		ContextSegments: 5,
		ChannelName:     "Sir Pickle",
		AssistantName:   "Sir Pickle AI",
	}, zap.NewNop().Sugar())
}

func goodReply(t *testing.T) string {
	t.Helper()
	ans := models.LLMAnswer{
		StructuredAnswer: models.StructuredAnswer{
			Introduction: "Order blocks matter. [Source 1]",
			Explanation:  "They mark institutional footprints. [Source 1]",
			Examples:     "No specific examples were found in the provided context.",
			Tips:         "Watch the retest. [Source 1]",
			Caveats:      "No specific caveats or important considerations were found in the provided context.",
		},
		Citations: []models.Citation{{ID: 1, SourceIndex: 0}},
	}
	b, err := json.Marshal(ans)
	require.NoError(t, err)
	return string(b)
}

const sampleTranscript = "00:00:05 intro text. 00:01:10 detail about order blocks."

func ingestSample(t *testing.T, svc *Service) *IngestResult {
	t.Helper()
	res, err := svc.Ingest(context.Background(), IngestRequest{
		Title:           "Order Blocks 101",
		PublicationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		VideoURL:        "https://www.youtube.com/watch?v=abc123",
		Category:        "trading",
		Tags:            []string{" ICT ", "ict", "Order Blocks"},
		Transcript:      sampleTranscript,
	})
	require.NoError(t, err)
	return res
}

func TestIngestChunksAndEmbeds(t *testing.T) {
	st := newFakeStore()
	emb := &fakeEmbedder{}
	svc := newService(t, st, emb, &fakeLLM{})

	res := ingestSample(t, svc)

	assert.NotEmpty(t, res.VideoID)
	assert.GreaterOrEqual(t, res.ChunksCreated, 2)
	assert.Zero(t, res.EmbeddingFailures)
	assert.Len(t, st.chunks, res.ChunksCreated)
	assert.Equal(t, res.ChunksCreated, emb.calls)
	assert.Equal(t, []string{"ict", "order blocks"}, st.videos[res.VideoID].Tags)
}

func TestIngestMissingFieldsNamesThem(t *testing.T) {
	st := newFakeStore()
	svc := newService(t, st, &fakeEmbedder{}, &fakeLLM{})

	_, err := svc.Ingest(context.Background(), IngestRequest{
		Title:    "Only a title",
		Category: "trading",
	})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "publicationDate")
	assert.Contains(t, err.Error(), "videoUrl")
	assert.Contains(t, err.Error(), "transcript")
	assert.NotContains(t, err.Error(), "title,")
	assert.Empty(t, st.videos, "nothing should persist on validation failure")
}

func TestIngestEmbeddingFailuresAreCountedNotFatal(t *testing.T) {
	st := newFakeStore()
	svc := newService(t, st, &fakeEmbedder{fail: true}, &fakeLLM{})

	res := ingestSample(t, svc)

	assert.Zero(t, res.ChunksCreated)
	assert.GreaterOrEqual(t, res.EmbeddingFailures, 2)
	assert.Contains(t, st.videos, res.VideoID, "video record still saves")
}

func TestAskReturnsGroundedAnswer(t *testing.T) {
	st := newFakeStore()
	svc := newService(t, st, &fakeEmbedder{}, &fakeLLM{reply: goodReply(t)})
	ingestSample(t, svc)

	res, err := svc.Ask(context.Background(), "what are order blocks?")
	require.NoError(t, err)

	assert.Equal(t, []models.Citation{{ID: 1, SourceIndex: 0}}, res.Citations)
	require.Len(t, res.RelatedSources, 1)
	assert.Equal(t, "Order Blocks 101", res.RelatedSources[0].VideoTitle)
	assert.Equal(t, "Sir Pickle", res.RelatedSources[0].Channel)
	assert.Contains(t, res.RelatedSources[0].TimestampURL, "v=abc123")
	assert.GreaterOrEqual(t, res.AnswerLatencyMs, int64(0))

	intro := res.ProcessedAnswer.Processed["introduction"]
	var rebuilt strings.Builder
	for _, p := range intro {
		rebuilt.WriteString(p.Content)
	}
	assert.Equal(t, res.StructuredAnswer.Introduction, rebuilt.String())
}

func TestAskEmptyIndexIsNoContext(t *testing.T) {
	svc := newService(t, newFakeStore(), &fakeEmbedder{}, &fakeLLM{reply: "{}"})

	_, err := svc.Ask(context.Background(), "anything at all?")

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNoContext))
}

func TestAskBlankQuestionRejected(t *testing.T) {
	svc := newService(t, newFakeStore(), &fakeEmbedder{}, &fakeLLM{})

	_, err := svc.Ask(context.Background(), "   ")

	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAskDropsOutOfRangeCitations(t *testing.T) {
	st := newFakeStore()
	ans := models.LLMAnswer{
		StructuredAnswer: models.StructuredAnswer{Introduction: "Text. [Source 9]"},
		Citations: []models.Citation{
			{ID: 1, SourceIndex: 0},
			{ID: 9, SourceIndex: 8},
		},
	}
	b, err := json.Marshal(ans)
	require.NoError(t, err)
	svc := newService(t, st, &fakeEmbedder{}, &fakeLLM{reply: string(b)})
	ingestSample(t, svc)

	res, err := svc.Ask(context.Background(), "question?")
	require.NoError(t, err)

	assert.Equal(t, []models.Citation{{ID: 1, SourceIndex: 0}}, res.Citations)
	assert.Len(t, res.RelatedSources, 1)
}

func TestAskProviderFailureIsUnavailable(t *testing.T) {
	st := newFakeStore()
	svc := newService(t, st, &fakeEmbedder{}, &fakeLLM{err: fmt.Errorf("connection refused")})
	ingestSample(t, svc)

	_, err := svc.Ask(context.Background(), "question?")

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestKeywordSearchFindsNearestTimestamp(t *testing.T) {
	st := newFakeStore()
	svc := newService(t, st, &fakeEmbedder{}, &fakeLLM{})
	ingestSample(t, svc)

	results, err := svc.KeywordSearch(context.Background(), "order blocks")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "00:01:10", results[0].TimestampLink)
	assert.Contains(t, results[0].TimestampURL, "t=70s")
}

func TestKeywordSearchNoIndexMatches(t *testing.T) {
	st := newFakeStore()
	svc := newService(t, st, &fakeEmbedder{}, &fakeLLM{})
	ingestSample(t, svc)

	_, err := svc.KeywordSearch(context.Background(), "quantum chromodynamics")

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNoMatches))
}

func TestKeywordSearchBlankKeywordRejected(t *testing.T) {
	svc := newService(t, newFakeStore(), &fakeEmbedder{}, &fakeLLM{})

	_, err := svc.KeywordSearch(context.Background(), "  ")

	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetVideoNotFound(t *testing.T) {
	svc := newService(t, newFakeStore(), &fakeEmbedder{}, &fakeLLM{})

	_, err := svc.GetVideo(context.Background(), "vid-404")

	assert.True(t, apperr.Is(err, apperr.KindNoMatches))
}

func TestListVideosOmitsTranscripts(t *testing.T) {
	st := newFakeStore()
	svc := newService(t, st, &fakeEmbedder{}, &fakeLLM{})
	ingestSample(t, svc)

	videos, err := svc.ListVideos(context.Background())
	require.NoError(t, err)

	require.Len(t, videos, 1)
	assert.Empty(t, videos[0].Transcript)
}
