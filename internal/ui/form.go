package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/treykane/pitunnel-manager/internal/model"
	"github.com/treykane/pitunnel-manager/internal/util"
)

// Field indices for the create-tunnel form.
const (
	fieldPort = iota
	fieldKind
	fieldName
	fieldCount
)

// createForm holds all state for the "create tunnel" screen. Submitting the
// form yields a CreateSpec; the caller shows the assembled command for
// confirmation before anything is launched.
type createForm struct {
	fields   []textinput.Model
	focusIdx int
	persist  bool
	errMsg   string
}

func newCreateForm() *createForm {
	placeholders := []string{
		"local port to expose (required)",
		"1 = HTTP (default), 2 = Custom",
		"tunnel name / subdomain (optional)",
	}
	limits := []int{6, 1, 64}

	f := &createForm{fields: make([]textinput.Model, fieldCount)}
	for i := range f.fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 40
		f.fields[i] = ti
	}
	f.fields[fieldPort].Focus()
	return f
}

// update processes one key message. A non-nil spec means the form is
// complete and validated; the form never launches anything itself.
func (f *createForm) update(msg tea.KeyMsg) (*model.CreateSpec, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "down", "up":
		f.fields[f.focusIdx].Blur()
		if msg.String() == "tab" || msg.String() == "down" {
			f.focusIdx = (f.focusIdx + 1) % fieldCount
		} else {
			f.focusIdx = (f.focusIdx - 1 + fieldCount) % fieldCount
		}
		f.fields[f.focusIdx].Focus()
		return nil, f.fields[f.focusIdx].Cursor.BlinkCmd()
	case "ctrl+p":
		f.persist = !f.persist
		return nil, nil
	case "enter":
		spec, err := f.buildSpec()
		if err != nil {
			f.errMsg = err.Error()
			return nil, nil
		}
		return &spec, nil
	default:
		var cmd tea.Cmd
		f.fields[f.focusIdx], cmd = f.fields[f.focusIdx].Update(msg)
		f.errMsg = ""
		return nil, cmd
	}
}

func (f *createForm) buildSpec() (model.CreateSpec, error) {
	port := strings.TrimSpace(f.fields[fieldPort].Value())
	kindChoice := strings.TrimSpace(f.fields[fieldKind].Value())
	name := strings.TrimSpace(f.fields[fieldName].Value())

	if err := util.ValidatePortString(port); err != nil {
		return model.CreateSpec{}, fmt.Errorf("please enter a valid port number")
	}

	kind := model.KindHTTP
	switch kindChoice {
	case "", "1":
	case "2":
		kind = model.KindCustom
	default:
		return model.CreateSpec{}, fmt.Errorf("tunnel type must be 1 (HTTP) or 2 (Custom)")
	}

	return model.CreateSpec{Port: port, Kind: kind, Name: name, Persist: f.persist}, nil
}

// view renders the form body for embedding in a panel.
func (f *createForm) view() string {
	labels := []string{"Port:", "Type:", "Name:"}

	var b strings.Builder
	for i, label := range labels {
		cursor := "  "
		if i == f.focusIdx {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-7s %s\n", cursor, label, f.fields[i].View()))
	}

	persistMarker := " "
	if f.persist {
		persistMarker = "x"
	}
	b.WriteString(fmt.Sprintf("\n  [%s] Persistent (Ctrl+P to toggle)\n", persistMarker))

	if f.errMsg != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString("\n" + errStyle.Render("Error: "+f.errMsg) + "\n")
	}

	b.WriteString("\nTab navigate | Enter review command | Esc cancel")
	return b.String()
}
