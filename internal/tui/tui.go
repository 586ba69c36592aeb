// Package tui is the interactive client: a dashboard plus login and register
// forms, rendered with Bubble Tea.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run blocks until the user quits. Pending view timers and any in-flight
// login are cancelled on return.
func Run(ctx context.Context, deps Deps) error {
	applyColorProfilePreference()
	applyThemePreference(deps.Theme)

	m := newAppModel(ctx, deps)
	defer m.close()

	_, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(m.ctx),
	).Run()
	return err
}
