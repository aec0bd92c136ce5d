// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. It maps driver errors onto the
// store error set and keeps SQL details out of the service layer.
//
// Schema migrations live in the migrations subpackage and are applied with goose.
package postgres
