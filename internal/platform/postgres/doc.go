// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they run identically on a
// plain connection pool or inside a transaction, and map driver-level errors
// (unique, foreign key, and check violations; missing rows) onto the
// sentinel errors defined by the store package.
package postgres
