package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Success("applied %d migration(s)", 2)
	p.Info("no pending migrations")
	p.Section("Schema")
	p.SQL("CREATE TABLE a ();\nCREATE TABLE b ();\n")

	out := buf.String()
	assert.Contains(t, out, "applied 2 migration(s)")
	assert.Contains(t, out, "no pending migrations")
	assert.Contains(t, out, "Schema")
	assert.Contains(t, out, "══════")
	assert.Contains(t, out, "CREATE TABLE a ();")
	assert.Contains(t, out, "CREATE TABLE b ();")
}

func TestStatusIcon(t *testing.T) {
	for status, icon := range map[string]string{
		"applied": "✓",
		"pending": "○",
		"failed":  "✗",
		"unknown": "•",
	} {
		assert.Contains(t, StatusIcon(status), icon, status)
	}
}
