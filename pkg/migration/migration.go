// Package migration provides database migration functionality.
package migration

import (
	"time"

	"github.com/marshallshelly/bazaar/pkg/schema"
)

// Migration represents a database migration.
type Migration struct {
	Version string // Version/timestamp (e.g., "20240101120000")
	Name    string // Migration name (e.g., "create_users_table")
	UpSQL   string // SQL for applying the migration
	DownSQL string // SQL for rolling back the migration
}

// MigrationStatus represents the status of a migration.
type MigrationStatus string

const (
	// StatusPending means the migration has not been applied.
	StatusPending MigrationStatus = "pending"
	// StatusApplied means the migration has been applied.
	StatusApplied MigrationStatus = "applied"
	// StatusFailed means the migration failed to apply.
	StatusFailed MigrationStatus = "failed"
)

// MigrationRecord represents a migration in the tracking table.
type MigrationRecord struct {
	Version   string          `json:"version"`
	Name      string          `json:"name"`
	Status    MigrationStatus `json:"status"`
	AppliedAt *time.Time      `json:"appliedAt,omitempty"`
	Error     *string         `json:"error,omitempty"`
}

// FromTables builds a migration creating every table, in registration order.
func FromTables(version, name string, tables []*schema.TableMetadata) Migration {
	up, down := NewPlanner().GenerateMigration(tables)
	return Migration{Version: version, Name: name, UpSQL: up, DownSQL: down}
}

// GenerateVersion generates a timestamp-based version string.
// Format: YYYYMMDDHHmmss (e.g., "20240101120000")
func GenerateVersion() string {
	return time.Now().Format("20060102150405")
}
