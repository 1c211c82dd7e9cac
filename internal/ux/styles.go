// Package ux provides terminal output styling for devflow.
package ux

import "github.com/charmbracelet/lipgloss"

// Semantic colors.
var (
	ColorSuccess = lipgloss.Color("#2ECC71")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorInfo    = lipgloss.Color("#3498DB")
	ColorMuted   = lipgloss.Color("#7F8C8D")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorInfo),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Info:    lipgloss.NewStyle().Foreground(ColorInfo),
}

// Icon is a themed status symbol.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconInfo    Icon = "ℹ"
	IconPending Icon = "○"
	IconBullet  Icon = "•"
)

// Render returns the icon with its semantic styling applied.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconInfo:
		return Styles.Info.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// LevelIcon maps a feedback event level to its icon.
func LevelIcon(level string) Icon {
	switch level {
	case "success":
		return IconSuccess
	case "warning":
		return IconWarning
	case "error":
		return IconError
	case "info":
		return IconInfo
	default:
		return IconBullet
	}
}

// StatusIcon maps a task status name to its icon.
func StatusIcon(status string) Icon {
	switch status {
	case "completed":
		return IconSuccess
	case "failed":
		return IconError
	case "skipped", "pending":
		return IconPending
	case "running":
		return IconInfo
	default:
		return IconBullet
	}
}
