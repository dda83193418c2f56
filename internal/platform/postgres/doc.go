// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. It also owns the embedded goose migrations that
// define the schema those stores expect.
//
// All task queries are scoped by user_id, and driver errors are translated
// into store sentinel errors by MapError.
package postgres
