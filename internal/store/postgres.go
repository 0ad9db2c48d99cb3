// Package store is the Postgres persistence layer: videos, chunk embeddings
// (pgvector) and full-text keyword search over transcripts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/sirpickle/index-server/internal/models"
)

// ErrNotFound is returned by lookups for ids that do not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db              *sql.DB
	embeddingDim    int
	similarityFloor float64
}

type Options struct {
	EmbeddingDim    int
	SimilarityFloor float64 // 0 disables the floor
}

func New(db *sql.DB, opts Options) *Store {
	if opts.EmbeddingDim <= 0 {
		opts.EmbeddingDim = 1536
	}
	return &Store{
		db:              db,
		embeddingDim:    opts.EmbeddingDim,
		similarityFloor: opts.SimilarityFloor,
	}
}

// Open connects to Postgres and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// Init creates the tables and indexes the service needs.
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS videos (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			title text NOT NULL,
			publication_date timestamptz NOT NULL,
			video_url text NOT NULL,
			category text NOT NULL,
			tags text[] NOT NULL DEFAULT '{}',
			transcript text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS video_chunks (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			video_id uuid NOT NULL,
			video_title text NOT NULL,
			chunk_text text NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.embeddingDim),
		`CREATE INDEX IF NOT EXISTS video_chunks_video_id_idx ON video_chunks (video_id)`,
		`CREATE INDEX IF NOT EXISTS video_chunks_embedding_idx ON video_chunks
			USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE INDEX IF NOT EXISTS videos_transcript_fts_idx ON videos
			USING gin (to_tsvector('english', transcript))`,
		`CREATE INDEX IF NOT EXISTS videos_category_idx ON videos (category)`,
		`CREATE INDEX IF NOT EXISTS videos_publication_date_idx ON videos (publication_date DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// InsertVideo saves a video record and returns its generated id.
func (s *Store) InsertVideo(ctx context.Context, v *models.Video) (string, error) {
	const query = `
		INSERT INTO videos (title, publication_date, video_url, category, tags, transcript)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id string
	err := s.db.QueryRowContext(ctx, query,
		v.Title, v.PublicationDate, v.VideoURL, v.Category, pq.Array(v.Tags), v.Transcript,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert video: %w", err)
	}
	return id, nil
}

// InsertChunk saves one chunk with its embedding.
func (s *Store) InsertChunk(ctx context.Context, c *models.Chunk) error {
	const query = `
		INSERT INTO video_chunks (video_id, video_title, chunk_text, embedding)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.VideoID, c.VideoTitle, c.Text, pgvector.NewVector(c.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// SearchChunks runs a cosine k-NN search over chunk embeddings and joins each
// hit with its parent video's metadata. Orphaned chunks are kept with empty
// parent fields. An empty index yields an empty slice, not an error.
func (s *Store) SearchChunks(ctx context.Context, vec []float32, k int) ([]models.RetrievedChunk, error) {
	const query = `
		SELECT
			vc.video_id,
			vc.video_title,
			vc.chunk_text,
			COALESCE(v.video_url, ''),
			COALESCE(v.publication_date, 'epoch'::timestamptz),
			COALESCE(v.tags, '{}'),
			COALESCE(v.category, ''),
			1 - (vc.embedding <=> $1) AS similarity
		FROM video_chunks vc
		LEFT JOIN videos v ON v.id = vc.video_id
		WHERE ($3 <= 0) OR (1 - (vc.embedding <=> $1)) >= $3
		ORDER BY vc.embedding <=> $1, vc.created_at
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(vec), k, s.similarityFloor)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var chunks []models.RetrievedChunk
	for rows.Next() {
		var c models.RetrievedChunk
		if err := rows.Scan(
			&c.VideoID, &c.VideoTitle, &c.Text,
			&c.VideoURL, &c.PublicationDate, pq.Array(&c.Tags), &c.Category,
			&c.Similarity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk rows: %w", err)
	}
	return chunks, nil
}

// SearchTranscripts runs a full-text search over transcripts and returns the
// matching videos ordered by relevance, most relevant first.
func (s *Store) SearchTranscripts(ctx context.Context, keyword string) ([]models.Video, error) {
	const query = `
		SELECT id, title, publication_date, video_url, category, tags, transcript, created_at
		FROM videos
		WHERE to_tsvector('english', transcript) @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(to_tsvector('english', transcript), plainto_tsquery('english', $1)) DESC
	`

	rows, err := s.db.QueryContext(ctx, query, keyword)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	defer rows.Close()

	return scanVideos(rows)
}

// GetVideo looks a video up by id.
func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	const query = `
		SELECT id, title, publication_date, video_url, category, tags, transcript, created_at
		FROM videos
		WHERE id = $1
	`

	var v models.Video
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Title, &v.PublicationDate, &v.VideoURL,
		&v.Category, pq.Array(&v.Tags), &v.Transcript, &v.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &v, nil
}

// ListVideos returns all videos, newest first, without transcripts.
func (s *Store) ListVideos(ctx context.Context) ([]models.Video, error) {
	const query = `
		SELECT id, title, publication_date, video_url, category, tags, '', created_at
		FROM videos
		ORDER BY publication_date DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	return scanVideos(rows)
}

func scanVideos(rows *sql.Rows) ([]models.Video, error) {
	var videos []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(
			&v.ID, &v.Title, &v.PublicationDate, &v.VideoURL,
			&v.Category, pq.Array(&v.Tags), &v.Transcript, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video rows: %w", err)
	}
	return videos, nil
}
