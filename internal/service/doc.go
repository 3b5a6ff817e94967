// Package service provides application-level services sitting between the
// HTTP handlers and the stores: user registration and login, flashcard CRUD
// with transactional bulk creation, and generation history listing.
//
// Error handling principles:
//  1. Service methods return sentinel errors for expected error conditions
//  2. Callers use errors.Is/errors.As to check for specific conditions
//  3. The API layer maps service errors to appropriate HTTP status codes
package service
