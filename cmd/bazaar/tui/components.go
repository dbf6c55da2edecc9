package tui

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/bazaar/pkg/migration"
)

// StatusTable renders one line per migration record.
func StatusTable(records []migration.MigrationRecord) string {
	if len(records) == 0 {
		return mutedStyle.Render("No migrations")
	}

	var b strings.Builder
	for _, r := range records {
		applied := mutedStyle.Render("not applied")
		if r.AppliedAt != nil {
			applied = mutedStyle.Render("applied " + r.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(&b, "%s  %s %s  %s\n", FormatStatus(string(r.Status)), r.Version, r.Name, applied)
		if r.Error != nil {
			fmt.Fprintf(&b, "    %s\n", dangerStyle.Render(*r.Error))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// pending counts records that have not been applied yet.
func pending(records []migration.MigrationRecord) int {
	n := 0
	for _, r := range records {
		if r.Status != migration.StatusApplied {
			n++
		}
	}
	return n
}
