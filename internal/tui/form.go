package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
)

type formKind int

const (
	createForm formKind = iota + 1
	importForm
)

// Modal ids registered with the UI store while a form is open.
const (
	CreateModalID = "create-project"
	ImportModalID = "import-project"
)

func (k formKind) modalID() string {
	if k == importForm {
		return ImportModalID
	}
	return CreateModalID
}

func (k formKind) title() string {
	if k == importForm {
		return "Import Novel"
	}
	return "New Project"
}

// form is a vertical list of text inputs. Enter on the last field submits.
type form struct {
	kind   formKind
	inputs []textinput.Model
	focus  int
}

func newForm(kind formKind) *form {
	var labels []string
	switch kind {
	case importForm:
		labels = []string{"File", "Title", "Author", "Genre"}
	default:
		labels = []string{"Title", "Author", "Genre", "Description"}
	}

	f := &form{kind: kind}
	for _, label := range labels {
		in := textinput.New()
		in.Prompt = label + ": "
		in.CharLimit = 256
		in.Width = 48
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) onLastField() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) createRequest() api.CreateProjectRequest {
	return api.CreateProjectRequest{
		Title:       f.value(0),
		Author:      f.value(1),
		Genre:       f.value(2),
		Description: f.value(3),
	}
}

// importRequest asks the backend to fill in metadata when no title is given.
func (f *form) importRequest() api.ImportProjectRequest {
	return api.ImportProjectRequest{
		FilePath:             f.value(0),
		Title:                f.value(1),
		Author:               f.value(2),
		Genre:                f.value(3),
		AutoGenerateMetadata: f.value(1) == "",
	}
}

func (f *form) view(th theme) string {
	var b strings.Builder
	b.WriteString(th.section.Render("┃ "+f.kind.title()) + "\n\n")
	for _, in := range f.inputs {
		b.WriteString("  " + in.View() + "\n")
	}
	b.WriteString("\n" + th.dim.Render("  [tab] next  [enter] submit on last field  [esc] cancel"))
	return b.String()
}
