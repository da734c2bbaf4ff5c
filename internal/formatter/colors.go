package formatter

import (
	"github.com/charmbracelet/lipgloss"
)

// Terminal is the palette used for interactive output.
var Terminal = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a small stylesheet of named [lipgloss.Style] values.
//
// A nil *Palette renders text unchanged.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
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

func (p *Palette) Title(s string) string { return p.render(func(p *Palette) lipgloss.Style { return p.title }, s) }
func (p *Palette) OK(s string) string    { return p.render(func(p *Palette) lipgloss.Style { return p.ok }, s) }
func (p *Palette) Err(s string) string   { return p.render(func(p *Palette) lipgloss.Style { return p.err }, s) }
func (p *Palette) Warn(s string) string  { return p.render(func(p *Palette) lipgloss.Style { return p.warn }, s) }
func (p *Palette) Help(s string) string  { return p.render(func(p *Palette) lipgloss.Style { return p.help }, s) }

// render looks the style up only after the nil check, so a nil palette never dereferences.
func (p *Palette) render(style func(*Palette) lipgloss.Style, s string) string {
	if p == nil {
		return s
	}
	return style(p).Render(s)
}
