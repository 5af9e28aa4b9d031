package repository

import (
	"context"
	"database/sql"
)

// schemaStatements holds the DDL for the persistence collaborator. Screenings
// carry an auto-increment seq so the startup replay reproduces the registry's
// insertion order exactly.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS works (
        title           VARCHAR(255) NOT NULL PRIMARY KEY,
        genre           VARCHAR(128) NOT NULL,
        synopsis        TEXT         NOT NULL,
        runtime_minutes INT UNSIGNED NOT NULL,
        updated_at      TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    )`,
	`CREATE TABLE IF NOT EXISTS screenings (
        seq        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        id         VARCHAR(128)    NOT NULL UNIQUE,
        room_id    VARCHAR(64)     NOT NULL,
        work_title VARCHAR(255)    NOT NULL,
        starts_at  DATETIME        NOT NULL,
        created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE TABLE IF NOT EXISTS tickets (
        ticket_key      VARCHAR(160) NOT NULL PRIMARY KEY,
        screening_id    VARCHAR(128) NOT NULL,
        seat            VARCHAR(8)   NOT NULL,
        price           DECIMAL(8,2) NOT NULL,
        patron_category VARCHAR(64)  NOT NULL,
        issued_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
}

// EnsureSchema creates the collaborator's tables when they do not exist yet.
// Called once at startup before the registry is loaded.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
