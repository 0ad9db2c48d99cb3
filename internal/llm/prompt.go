package llm

import (
	"fmt"
	"strings"

	"github.com/sirpickle/index-server/internal/models"
)

// Verbatim "no data" sentences the model is instructed to emit for a field
// with no grounded content. Consumers compare against these to suppress
// boilerplate, so the exact wording is part of the contract.
const (
	NoExamplesSentinel = "No specific examples were found in the provided context."
	NoTipsSentinel     = "No specific tips or key takeaways were found in the provided context."
	NoCaveatsSentinel  = "No specific caveats or important considerations were found in the provided context."
)

// PromptConfig names the persona the prompt speaks as.
type PromptConfig struct {
	AssistantName string
	ChannelName   string
}

// BuildPrompt assembles the grounding prompt: persona and formatting rules,
// the ranked context segments labelled 1-based as Source N, then the user's
// question. Pure function.
func BuildPrompt(question string, segments []models.ContextSegment, cfg PromptConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are '%s', an expert AI assistant for the channel %s. ", cfg.AssistantName, cfg.ChannelName)
	b.WriteString("Your knowledge is strictly limited to the video transcript segments provided below. ")
	b.WriteString("Your primary goal is to answer the user's question accurately and concisely using *solely and exclusively* the information contained within these segments. ")
	b.WriteString("Do not use any external knowledge or make assumptions beyond what is written in the context.\n\n")

	b.WriteString("Your entire response MUST be formatted as a single, valid JSON object. ")
	b.WriteString("This JSON object MUST have exactly two top-level keys: \"structuredAnswer\" and \"citations\".\n\n")

	b.WriteString("The \"structuredAnswer\" object MUST contain the following keys, and their string values must be derived *only* from the provided context segments:\n")
	b.WriteString("- \"introduction\": A brief introduction that directly addresses or rephrases the user's question, based on the context.\n")
	b.WriteString("- \"explanation\": The main explanation or answer to the question, using only information from the context.\n")
	fmt.Fprintf(&b, "- \"examples\": Specific examples from the provided sources, if any, that illustrate the point. If no direct examples are found in the context, state %q\n", NoExamplesSentinel)
	fmt.Fprintf(&b, "- \"tips\": Actionable tips or key takeaways directly mentioned in the sources. If none, state %q\n", NoTipsSentinel)
	fmt.Fprintf(&b, "- \"caveats\": Important considerations, warnings, or limitations explicitly mentioned in the sources. If none, state %q\n\n", NoCaveatsSentinel)

	b.WriteString("Cite relevant sources within the text of your \"structuredAnswer\" values using the format [Source X], where X is the 1-based index of the source segment as listed below in the context.\n\n")

	b.WriteString("If the provided segments do not contain enough information to answer the question fully, clearly state this within the \"explanation\" field of the \"structuredAnswer\" instead of inventing an answer. ")
	b.WriteString("For instance: \"The provided context does not contain specific information about [topic of the question].\"\n\n")

	b.WriteString("Example of the required JSON output format:\n")
	b.WriteString(`{
  "structuredAnswer": {
    "introduction": "The sources discuss X [Source 1].",
    "explanation": "The explanation derived from the context goes here.",
    "examples": "An example from the context is Y [Source 2].",
    "tips": "A key takeaway is Z [Source 1].",
    "caveats": "One consideration is A [Source 3]."
  },
  "citations": [
    { "id": 1, "sourceIndex": 0 },
    { "id": 2, "sourceIndex": 1 },
    { "id": 3, "sourceIndex": 2 }
  ]
}`)
	b.WriteString("\n\nOkay, here is the context from the videos:\n")

	for _, seg := range segments {
		fmt.Fprintf(&b, "\n--- Source %d ---\n", seg.OrdinalIndex+1)
		fmt.Fprintf(&b, "Title: %s\n", seg.Title)
		fmt.Fprintf(&b, "Transcript Segment: %q\n---", seg.Text)
	}

	fmt.Fprintf(&b, "\n\nUser's Question: %q\n\nJSON Answer (strictly follow the JSON format described above):", question)

	return b.String()
}
