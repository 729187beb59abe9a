// Package credentials looks up the stored Google Analytics connections of a
// user and selects the refresh token and default property to report against.
//
// Connections live in the user_ga_connections table. A user may have several
// rows; only rows with a property id are usable and the earliest connection
// (by created_at, then id) wins. PostgresStore reads the table through a pgx
// pool, MemoryStore serves tests and local development.
//
// The schema is managed with goose; the migrations are embedded in the binary
// and applied with Migrate.
package credentials
