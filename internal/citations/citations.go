// Package citations splits answer fields into renderable text and citation
// parts keyed by [Source N] markers.
package citations

import (
	"regexp"
	"strconv"

	"github.com/sirpickle/index-server/internal/models"
)

var markerPattern = regexp.MustCompile(`\[Source (\d+)\]`)

// UnresolvedSource marks a citation whose id was not present in the citation
// list; consumers render the marker as plain text.
const UnresolvedSource = -1

// Process scans each field of the structured answer for [Source N] markers
// and splits it into ordered parts. Concatenating part contents in order
// reproduces each field exactly, including whitespace between markers.
func Process(ans models.StructuredAnswer, cits []models.Citation) models.ProcessedAnswer {
	lookup := make(map[int]int, len(cits))
	for _, c := range cits {
		lookup[c.ID] = c.SourceIndex
	}

	return models.ProcessedAnswer{
		Original: ans,
		Processed: map[string][]models.AnswerPart{
			"introduction": splitField(ans.Introduction, lookup),
			"explanation":  splitField(ans.Explanation, lookup),
			"examples":     splitField(ans.Examples, lookup),
			"tips":         splitField(ans.Tips, lookup),
			"caveats":      splitField(ans.Caveats, lookup),
		},
	}
}

func splitField(text string, lookup map[int]int) []models.AnswerPart {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []models.AnswerPart{{Type: models.PartText, Content: text}}
	}

	var parts []models.AnswerPart
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > last {
			parts = append(parts, models.AnswerPart{
				Type:    models.PartText,
				Content: text[last:start],
			})
		}

		id, _ := strconv.Atoi(text[m[2]:m[3]])
		sourceIndex, ok := lookup[id]
		if !ok {
			sourceIndex = UnresolvedSource
		}
		parts = append(parts, models.AnswerPart{
			Type:        models.PartCitation,
			Content:     text[start:end],
			SourceIndex: sourceIndex,
		})
		last = end
	}

	if last < len(text) {
		parts = append(parts, models.AnswerPart{
			Type:    models.PartText,
			Content: text[last:],
		})
	}

	return parts
}
