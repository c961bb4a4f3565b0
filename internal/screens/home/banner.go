package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

const titleFull = ` ___                 ___
| __|_ ____ _ _ __  | _ \_ _ ___ _ __
| _|\ \ / _' | '  \ |  _/ '_/ -_) '_ \
|___/_\_\__,_|_|_|_||_| |_| \___| .__/
                                |_|`

const titleCompact = "E X A M P R E P"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	art := titleFull
	if compact || cw < 44 {
		art = titleCompact
	}
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, style.Render(art))
}
