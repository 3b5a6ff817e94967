// Package store defines the persistence interfaces of the Fiszki API and
// the sentinel errors their implementations return. Concrete PostgreSQL
// implementations live in internal/platform/postgres; services depend only
// on the interfaces defined here.
package store
