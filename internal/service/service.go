// Package service orchestrates the retrieval-and-grounding pipeline behind
// the two logical operations the surrounding application calls: ingest and
// query (ask / keyword search).
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sirpickle/index-server/internal/apperr"
	"github.com/sirpickle/index-server/internal/chunker"
	"github.com/sirpickle/index-server/internal/citations"
	"github.com/sirpickle/index-server/internal/embedding"
	"github.com/sirpickle/index-server/internal/llm"
	"github.com/sirpickle/index-server/internal/models"
	"github.com/sirpickle/index-server/internal/search"
	"github.com/sirpickle/index-server/internal/store"
	"github.com/sirpickle/index-server/internal/timestamp"
	"github.com/sirpickle/index-server/internal/transcript"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	InsertVideo(ctx context.Context, v *models.Video) (string, error)
	InsertChunk(ctx context.Context, c *models.Chunk) error
	SearchChunks(ctx context.Context, vec []float32, k int) ([]models.RetrievedChunk, error)
	SearchTranscripts(ctx context.Context, keyword string) ([]models.Video, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	ListVideos(ctx context.Context) ([]models.Video, error)
}

// Config tunes the pipeline.
type Config struct {
	ChunkSize        int
	ChunkOverlap     int
	ContextSegments  int
	MaxSnippetLength int
	EmbedConcurrency int
	AssistantName    string
	ChannelName      string

	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunker.DefaultSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = chunker.DefaultOverlap
	}
	if c.ContextSegments <= 0 {
		c.ContextSegments = 5
	}
	if c.MaxSnippetLength <= 0 {
		c.MaxSnippetLength = 1024
	}
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = 3
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = 30 * time.Second
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 10 * time.Second
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = 90 * time.Second
	}
}

type Service struct {
	store    Store
	embedder embedding.Client
	llm      llm.Generator
	engine   *search.Engine
	cfg      Config
	log      *zap.SugaredLogger
}

func New(st Store, embedder embedding.Client, generator llm.Generator, cfg Config, log *zap.SugaredLogger) *Service {
	cfg.setDefaults()
	return &Service{
		store:    st,
		embedder: embedder,
		llm:      generator,
		engine:   &search.Engine{Channel: cfg.ChannelName},
		cfg:      cfg,
		log:      log,
	}
}

// IngestRequest is a video upload.
type IngestRequest struct {
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publicationDate"`
	VideoURL        string    `json:"videoUrl"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	Transcript      string    `json:"transcript"`
}

// IngestResult reports what ingest persisted. The video record itself always
// saves before chunking starts; embedding failures degrade retrieval but do
// not fail the upload.
type IngestResult struct {
	VideoID           string `json:"videoId"`
	ChunksCreated     int    `json:"chunksCreated"`
	EmbeddingFailures int    `json:"embeddingFailures"`
}

// Ingest validates and saves the video, then chunks and embeds its
// transcript. Chunk embedding runs concurrently under a bounded limit; each
// chunk persists independently and individual failures are counted, not
// fatal.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if err := validateIngest(req); err != nil {
		return nil, err
	}

	normalized, err := transcript.Normalize(req.Transcript)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "transcript is not a usable VTT document", err)
	}

	video := &models.Video{
		Title:           strings.TrimSpace(req.Title),
		PublicationDate: req.PublicationDate,
		VideoURL:        strings.TrimSpace(req.VideoURL),
		Category:        strings.TrimSpace(req.Category),
		Tags:            normalizeTags(req.Tags),
		Transcript:      normalized,
	}

	videoID, err := s.store.InsertVideo(ctx, video)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to save video", err)
	}

	res := chunker.Split(video.Transcript, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if res.Truncated {
		s.log.Warnw("chunking stopped early", "videoId", videoID)
	}
	s.log.Infow("video saved, embedding chunks",
		"videoId", videoID, "chunks", len(res.Chunks))

	created, failed := s.embedAndPersist(ctx, videoID, video.Title, res.Chunks)

	s.log.Infow("ingest finished",
		"videoId", videoID, "chunksCreated", created, "embeddingFailures", failed)

	return &IngestResult{
		VideoID:           videoID,
		ChunksCreated:     created,
		EmbeddingFailures: failed,
	}, nil
}

// embedAndPersist fans chunk embedding out under a semaphore and persists
// each successful chunk. A failure on one chunk never aborts the rest.
func (s *Service) embedAndPersist(ctx context.Context, videoID, title string, chunks []chunker.Chunk) (created, failed int) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, s.cfg.EmbedConcurrency)
	)

	for _, c := range chunks {
		wg.Add(1)
		sem <- struct{}{}

		go func(text string) {
			defer wg.Done()
			defer func() { <-sem }()

			embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
			vec, err := s.embedder.Embed(embedCtx, text, embedding.TaskDocument)
			cancel()
			if err != nil {
				s.log.Warnw("chunk embedding failed", "videoId", videoID, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			err = s.store.InsertChunk(ctx, &models.Chunk{
				VideoID:    videoID,
				VideoTitle: title,
				Text:       text,
				Embedding:  vec,
			})
			if err != nil {
				s.log.Errorw("chunk persist failed", "videoId", videoID, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			created++
			mu.Unlock()
		}(c.Text)
	}

	wg.Wait()
	return created, failed
}

// AskResult is the grounded answer to a natural-language question.
type AskResult struct {
	AnswerLatencyMs  int64                   `json:"answerLatencyMs"`
	StructuredAnswer models.StructuredAnswer `json:"structuredAnswer"`
	ProcessedAnswer  models.ProcessedAnswer  `json:"processedAnswer"`
	Citations        []models.Citation       `json:"citations"`
	RelatedSources   []models.RelatedSource  `json:"relatedSources"`
}

// Ask answers a question grounded in retrieved transcript segments: embed
// the question, vector-search for context, prompt the model, parse and
// citation-link its answer. The stages are inherently serial.
func (s *Service) Ask(ctx context.Context, question string) (*AskResult, error) {
	start := time.Now()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.New(apperr.KindValidation, "question is required and must be a non-empty string")
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	queryVec, err := s.embedder.Embed(embedCtx, question, embedding.TaskQuery)
	cancel()
	if err != nil {
		return nil, timeoutAware(err, "failed to embed question")
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	chunks, err := s.store.SearchChunks(searchCtx, queryVec, s.cfg.ContextSegments)
	cancel()
	if err != nil {
		return nil, timeoutAware(err, "vector search failed")
	}
	if len(chunks) == 0 {
		return nil, apperr.New(apperr.KindNoContext, "could not find relevant context for your question")
	}

	segments := make([]models.ContextSegment, 0, len(chunks))
	sources := make([]models.RelatedSource, 0, len(chunks))
	for i, c := range chunks {
		segments = append(segments, models.ContextSegment{
			Title:        c.VideoTitle,
			Text:         c.Text,
			OrdinalIndex: i,
			VideoID:      c.VideoID,
			VideoURL:     c.VideoURL,
		})

		label, url := timestamp.LinkInfo(c.Text, c.VideoURL)
		sources = append(sources, models.RelatedSource{
			VideoTitle:    c.VideoTitle,
			TimestampLink: label,
			TimestampURL:  url,
			Snippet:       truncateSnippet(c.Text, s.cfg.MaxSnippetLength),
			PublishedDate: c.PublicationDate,
			Tags:          c.Tags,
			Channel:       s.cfg.ChannelName,
			Category:      c.Category,
			VideoURL:      c.VideoURL,
		})
	}

	prompt := llm.BuildPrompt(question, segments, llm.PromptConfig{
		AssistantName: s.cfg.AssistantName,
		ChannelName:   s.cfg.ChannelName,
	})

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	raw, err := s.llm.Generate(genCtx, prompt)
	cancel()
	if err != nil {
		s.log.Errorw("generation failed", "provider", s.llm.Name(), "error", err)
		return nil, timeoutAware(err, "failed to get a response from the AI model")
	}

	answer, err := llm.ParseAnswer(raw)
	if err != nil {
		s.log.Errorw("model returned unusable payload", "provider", s.llm.Name(), "raw", raw, "error", err)
		return nil, err
	}

	// Citations pointing outside the retrieved set are dropped.
	valid := make([]models.Citation, 0, len(answer.Citations))
	for _, c := range answer.Citations {
		if c.SourceIndex >= 0 && c.SourceIndex < len(sources) {
			valid = append(valid, c)
		}
	}

	// Related sources are only the ones the model actually cited, in source
	// order, deduplicated.
	cited := make([]models.RelatedSource, 0, len(valid))
	seen := make(map[int]bool, len(valid))
	idxs := make([]int, 0, len(valid))
	for _, c := range valid {
		if !seen[c.SourceIndex] {
			seen[c.SourceIndex] = true
			idxs = append(idxs, c.SourceIndex)
		}
	}
	sort.Ints(idxs)
	for _, i := range idxs {
		cited = append(cited, sources[i])
	}

	return &AskResult{
		AnswerLatencyMs:  time.Since(start).Milliseconds(),
		StructuredAnswer: answer.StructuredAnswer,
		ProcessedAnswer:  citations.Process(answer.StructuredAnswer, valid),
		Citations:        valid,
		RelatedSources:   cited,
	}, nil
}

// KeywordSearch runs the two-stage keyword pipeline: full-text candidates
// from the store, then snippet localization and relevance filtering. Zero
// index matches is reported distinctly from "matched but all filtered".
func (s *Service) KeywordSearch(ctx context.Context, keyword string) ([]models.KeywordResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.New(apperr.KindValidation, "keyword query parameter is required")
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	videos, err := s.store.SearchTranscripts(searchCtx, keyword)
	cancel()
	if err != nil {
		return nil, timeoutAware(err, "keyword search failed")
	}
	if len(videos) == 0 {
		return nil, apperr.New(apperr.KindNoMatches, "no videos found matching your keyword")
	}

	return s.engine.Run(keyword, videos), nil
}

// GetVideo looks up one video by id.
func (s *Service) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	v, err := s.store.GetVideo(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.KindNoMatches, "video not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load video", err)
	}
	return v, nil
}

// ListVideos returns the catalog without transcripts.
func (s *Service) ListVideos(ctx context.Context) ([]models.Video, error) {
	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list videos", err)
	}
	return videos, nil
}

func validateIngest(req IngestRequest) error {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if req.PublicationDate.IsZero() {
		missing = append(missing, "publicationDate")
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		missing = append(missing, "videoUrl")
	}
	if strings.TrimSpace(req.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(req.Transcript) == "" {
		missing = append(missing, "transcript")
	}
	if len(missing) > 0 {
		return apperr.New(apperr.KindValidation,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func truncateSnippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

// timeoutAware wraps err, mapping a deadline hit to the retryable
// unavailable kind rather than a permanent failure.
func timeoutAware(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindUnavailable, msg+" (timed out)", err)
	}
	if _, ok := apperr.KindOf(err); ok {
		return err
	}
	return apperr.Wrap(apperr.KindUnavailable, msg, err)
}
