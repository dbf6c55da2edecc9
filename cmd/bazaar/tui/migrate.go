// Package tui is the interactive migration screen of the bazaar CLI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marshallshelly/bazaar/pkg/migration"
)

type mode int

const (
	modeLoading mode = iota
	modeConfirm
	modeApplying
	modeDone
	modeError
)

// StatusFunc loads the status of every known migration.
type StatusFunc func(ctx context.Context) ([]migration.MigrationRecord, error)

// ApplyFunc applies pending migrations and returns the applied versions.
type ApplyFunc func(ctx context.Context) ([]string, error)

// MigrateModel shows pending migrations, asks for confirmation and applies
// them with a spinner.
type MigrateModel struct {
	ctx     context.Context
	mode    mode
	spinner spinner.Model
	status  StatusFunc
	apply   ApplyFunc
	records []migration.MigrationRecord
	applied []string
	err     error
}

type statusMsg []migration.MigrationRecord

type appliedMsg []string

type errMsg struct{ err error }

func NewMigrateModel(ctx context.Context, status StatusFunc, apply ApplyFunc) MigrateModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return MigrateModel{ctx: ctx, mode: modeLoading, spinner: s, status: status, apply: apply}
}

func (m MigrateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadStatus)
}

func (m MigrateModel) loadStatus() tea.Msg {
	records, err := m.status(m.ctx)
	if err != nil {
		return errMsg{err: fmt.Errorf("load migration status: %w", err)}
	}
	return statusMsg(records)
}

func (m MigrateModel) applyPending() tea.Msg {
	versions, err := m.apply(m.ctx)
	if err != nil {
		return errMsg{err: err}
	}
	return appliedMsg(versions)
}

func (m MigrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.records = msg
		if pending(m.records) == 0 {
			m.mode = modeDone
			return m, tea.Quit
		}
		m.mode = modeConfirm
		return m, nil

	case appliedMsg:
		m.applied = msg
		m.mode = modeDone
		return m, m.loadStatus

	case errMsg:
		m.err = msg.err
		m.mode = modeError
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeConfirm:
			switch key {
			case "y", "enter":
				m.mode = modeApplying
				return m, m.applyPending
			case "n", "q", "esc":
				return m, tea.Quit
			}
		case modeDone, modeError:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MigrateModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bazaar migrations"))
	b.WriteString("\n")

	switch m.mode {
	case modeLoading:
		b.WriteString(m.spinner.View() + " loading status")
	case modeConfirm:
		b.WriteString(StatusTable(m.records))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "Apply %d pending migration(s)?\n\n", pending(m.records))
		b.WriteString(FormatKeys("y/enter", "apply", "n/esc", "cancel"))
	case modeApplying:
		b.WriteString(m.spinner.View() + " applying")
	case modeDone:
		if len(m.applied) > 0 {
			b.WriteString(successStyle.Render(fmt.Sprintf("Applied %d migration(s)", len(m.applied))))
		} else {
			b.WriteString(successStyle.Render("Schema is up to date"))
		}
		b.WriteString("\n\n")
		b.WriteString(StatusTable(m.records))
		b.WriteString("\n\n")
		b.WriteString(FormatKeys("any key", "exit"))
	case modeError:
		b.WriteString(dangerStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(FormatKeys("any key", "exit"))
	}
	return boxStyle.Render(b.String())
}

// Err returns the error that ended the session, if any.
func (m MigrateModel) Err() error { return m.err }

// RunMigrateUI runs the interactive migration screen.
func RunMigrateUI(ctx context.Context, status StatusFunc, apply ApplyFunc) error {
	final, err := tea.NewProgram(NewMigrateModel(ctx, status, apply)).Run()
	if err != nil {
		return err
	}
	return final.(MigrateModel).Err()
}
