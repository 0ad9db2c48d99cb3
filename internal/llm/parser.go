package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sirpickle/index-server/internal/apperr"
	"github.com/sirpickle/index-server/internal/models"
)

var codeFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// ParseAnswer decodes the model's raw output into the structured answer
// shape. It strips a surrounding markdown code fence and tolerates the known
// malformation of citations being nested inside structuredAnswer instead of
// at the top level. A payload that is still missing either key after the
// correction, or is not JSON at all, is a bad-upstream error; the caller logs
// the raw text.
func ParseAnswer(raw string) (*models.LLMAnswer, error) {
	cleaned := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	var envelope struct {
		StructuredAnswer *struct {
			models.StructuredAnswer
			Citations []models.Citation `json:"citations"`
		} `json:"structuredAnswer"`
		Citations []models.Citation `json:"citations"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, apperr.Wrap(apperr.KindBadUpstream, "model output is not valid JSON", err)
	}

	if envelope.StructuredAnswer == nil {
		return nil, apperr.New(apperr.KindBadUpstream, "model output is missing structuredAnswer")
	}

	cits := envelope.Citations
	if cits == nil {
		// Known malformation: citations nested under structuredAnswer.
		cits = envelope.StructuredAnswer.Citations
	}
	if cits == nil {
		return nil, apperr.New(apperr.KindBadUpstream, "model output is missing citations")
	}

	return &models.LLMAnswer{
		StructuredAnswer: envelope.StructuredAnswer.StructuredAnswer,
		Citations:        cits,
	}, nil
}
