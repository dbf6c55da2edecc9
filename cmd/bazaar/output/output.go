// Package output renders styled CLI messages.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#0E9F6E")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	sqlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
)

// Printer writes styled lines to an output stream.
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer { return &Printer{w: w} }

// Stdout is the printer used by commands.
var Stdout = New(os.Stdout)

func (p *Printer) line(prefix lipgloss.Style, icon, format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", prefix.Render(icon), fmt.Sprintf(format, args...))
}

func (p *Printer) Success(format string, args ...any) { p.line(successStyle, "✓", format, args...) }
func (p *Printer) Warning(format string, args ...any) { p.line(warningStyle, "⚠", format, args...) }
func (p *Printer) Error(format string, args ...any)   { p.line(errorStyle, "✗", format, args...) }
func (p *Printer) Info(format string, args ...any)    { p.line(infoStyle, "ℹ", format, args...) }

func (p *Printer) Muted(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints an underlined header surrounded by blank lines.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintf(p.w, "\n%s\n%s\n\n",
		headerStyle.Render(title),
		mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// SQL prints statements, one per line.
func (p *Printer) SQL(sql string) {
	for _, l := range strings.Split(strings.TrimRight(sql, "\n"), "\n") {
		_, _ = fmt.Fprintln(p.w, sqlStyle.Render(l))
	}
}

// StatusIcon returns the icon of a migration status.
func StatusIcon(status string) string {
	switch status {
	case "applied":
		return successStyle.Render("✓")
	case "pending":
		return warningStyle.Render("○")
	case "failed":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}
