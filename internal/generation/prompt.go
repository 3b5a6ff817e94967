package generation

import (
	"encoding/json"

	"github.com/pawelm/fiszki-api/internal/platform/openrouter"
)

// SystemPrompt instructs the model to act as a flashcard author. Installed
// on the provider client at startup.
const SystemPrompt = `You are an expert flashcard author. Given a passage of
text, extract the key facts and produce concise question/answer flashcards.
Each front must be a single question of at most 200 characters; each back a
single answer of at most 500 characters. Respond only with JSON conforming
to the provided schema.`

// proposalsSchema constrains the provider output to the
// { "flashcards": [...] } structure the orchestrator parses.
const proposalsSchema = `{
	"type": "object",
	"properties": {
		"flashcards": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"front": {"type": "string", "maxLength": 200},
					"back": {"type": "string", "maxLength": 500}
				},
				"required": ["front", "back"],
				"additionalProperties": false
			}
		}
	},
	"required": ["flashcards"],
	"additionalProperties": false
}`

// ProposalsResponseFormat returns the structured-output descriptor installed
// on the provider client.
func ProposalsResponseFormat() openrouter.ResponseFormat {
	return openrouter.ResponseFormat{
		Type: "json_schema",
		JSONSchema: openrouter.JSONSchemaFormat{
			Name:   "flashcard_proposals",
			Strict: true,
			Schema: json.RawMessage(proposalsSchema),
		},
	}
}
