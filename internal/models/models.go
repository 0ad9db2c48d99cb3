package models

import "time"

// Video is an ingested transcript record. Videos are immutable after ingest.
type Video struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publicationDate"`
	VideoURL        string    `json:"videoUrl"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	Transcript      string    `json:"transcript,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Chunk is a fixed-size overlapping slice of a transcript, the unit of
// embedding and retrieval. VideoTitle is a denormalized snapshot frozen at
// ingest time.
type Chunk struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	VideoTitle string    `json:"videoTitle"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}

// RetrievedChunk is a chunk joined with its parent video's metadata at query
// time. The parent fields are zero-valued when the parent video is missing.
type RetrievedChunk struct {
	VideoID         string
	VideoTitle      string
	Text            string
	VideoURL        string
	PublicationDate time.Time
	Tags            []string
	Category        string
	Similarity      float64
}

// ContextSegment is the per-query view of a retrieved chunk handed to the
// prompt builder. OrdinalIndex is the 0-based position in the ranked result
// set; the model cites it 1-based as [Source N].
type ContextSegment struct {
	Title        string
	Text         string
	OrdinalIndex int
	VideoID      string
	VideoURL     string
}

// Citation maps a [Source N] marker id (1-based, as written by the model) to
// the 0-based index of the context segment it refers to.
type Citation struct {
	ID          int `json:"id"`
	SourceIndex int `json:"sourceIndex"`
}

// StructuredAnswer is the five-field answer shape the model is instructed to
// produce. Each field may contain [Source N] markers.
type StructuredAnswer struct {
	Introduction string `json:"introduction"`
	Explanation  string `json:"explanation"`
	Examples     string `json:"examples"`
	Tips         string `json:"tips"`
	Caveats      string `json:"caveats"`
}

// LLMAnswer is the parsed top-level model output.
type LLMAnswer struct {
	StructuredAnswer StructuredAnswer `json:"structuredAnswer"`
	Citations        []Citation       `json:"citations"`
}

// Part types for processed answer fields.
const (
	PartText     = "text"
	PartCitation = "citation"
)

// AnswerPart is one segment of a processed answer field: either plain text or
// a citation marker. Concatenating Content over all parts of a field, in
// order, reproduces the original field text exactly. SourceIndex is -1 for a
// citation whose id could not be resolved.
type AnswerPart struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	SourceIndex int    `json:"sourceIndex,omitempty"`
}

// ProcessedAnswer pairs the original structured answer with its fields broken
// into renderable text/citation parts.
type ProcessedAnswer struct {
	Original  StructuredAnswer        `json:"original"`
	Processed map[string][]AnswerPart `json:"processed"`
}

// RelatedSource is the response-facing view of a cited context segment.
type RelatedSource struct {
	VideoTitle    string    `json:"videoTitle"`
	TimestampLink string    `json:"timestampLink"`
	TimestampURL  string    `json:"timestampUrl"`
	Snippet       string    `json:"snippet"`
	PublishedDate time.Time `json:"publishedDate"`
	Tags          []string  `json:"tags"`
	Channel       string    `json:"channel"`
	Category      string    `json:"category"`
	VideoURL      string    `json:"videoUrl"`
}

// KeywordResult has the same shape as RelatedSource but carries a best-match
// snippet window found by the keyword engine instead of a retrieval snippet.
type KeywordResult struct {
	VideoTitle    string    `json:"videoTitle"`
	TimestampLink string    `json:"timestampLink"`
	TimestampURL  string    `json:"timestampUrl"`
	Snippet       string    `json:"snippet"`
	PublishedDate time.Time `json:"publishedDate"`
	Tags          []string  `json:"tags"`
	Channel       string    `json:"channel"`
	Category      string    `json:"category"`
	VideoURL      string    `json:"videoUrl"`
}
