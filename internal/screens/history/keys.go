package history

import (
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/examprep/internal/ui/layout"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Review  key.Binding
	Retake  key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Back    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "Navigate")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Review:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Review")),
	Retake:  key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("R", "Retake")),
	Delete:  key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("D", "Delete")),
	Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("Y", "Delete")),
	Cancel:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("N", "Cancel")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back")),
}

// hints converts bindings into footer hints, skipping bindings without help.
func hints(bs ...key.Binding) []layout.KeyHint {
	out := make([]layout.KeyHint, 0, len(bs))
	for _, b := range bs {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		out = append(out, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return out
}
