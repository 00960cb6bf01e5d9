package openai

import (
	"fmt"
	"strings"
)

const rerankResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "rankings": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "index": {
            "type": "integer",
            "minimum": 0
          },
          "score": {
            "type": "number",
            "minimum": 0,
            "maximum": 10
          }
        },
        "required": ["index", "score"],
        "additionalProperties": false
      }
    }
  },
  "required": ["rankings"],
  "additionalProperties": false
}`

var rerankSystemPrompt = fmt.Sprintf(`You judge how relevant text passages are to a search query and return your verdicts as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Score every passage exactly once, using its zero-based index from the input.
- Score is a number from 0 (irrelevant) to 10 (directly answers the query).
- Judge relevance to the query only. Ignore writing quality and passage length.
- A passage that contains the answer scores high even if it also covers other topics.
- A passage that merely shares keywords with the query but does not address it scores low.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Query: "how do plants make food"
Passages:
[0] Photosynthesis converts sunlight, water, and carbon dioxide into glucose.
[1] The restaurant serves plant-based food every weekday.
Output:
{
  "rankings": [
    {"index":0,"score":9},
    {"index":1,"score":1}
  ]
}`, rerankResponseSchema)

// buildRerankPrompt formats the query and candidate passages for scoring.
func buildRerankPrompt(query string, documents []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\nPassages:\n", query)
	for i, doc := range documents {
		fmt.Fprintf(&b, "[%d] %s\n", i, strings.TrimSpace(doc))
	}
	return b.String()
}
