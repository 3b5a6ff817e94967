// Package domain defines the core business entities of the Fiszki API:
// users, flashcards, AI generations, and the validation rules that keep
// them consistent. Entities validate themselves; persistence and transport
// concerns live elsewhere.
package domain
