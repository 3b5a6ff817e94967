// Package generation owns the end-to-end flashcard generation transaction:
// invoking the AI provider, parsing its structured output into flashcard
// proposals, persisting the generation audit record, and classifying every
// failure into a typed error with exactly one best-effort audit log entry.
package generation
