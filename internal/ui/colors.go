package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/ytid/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	faint lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		faint: NewStyle(h),
	}
}

// status picks the style used for a settled task line.
func (p *Palette) status(s tasks.Status) lipgloss.Style {
	switch s {
	case tasks.StatusResolved:
		return p.ok
	case tasks.StatusFailed:
		return p.err
	case tasks.StatusSkipped:
		return p.faint
	default:
		return p.warn
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
