// Package tui implements the interactive terminal session on top of the
// note store. It owns no note state beyond read-only listing snapshots;
// every mutation goes through the store and is followed by a re-list.
package tui

import (
	"fmt"
	"os/exec"
	"strings"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/notestore"
)

// Options configures the terminal session.
type Options struct {
	Editor     string
	PreviewCmd string
	DateLayout string
	Theme      Theme
}

type uiMode int

const (
	modeList uiMode = iota
	modeTitleInput
	modeDescInput
	modeConfirmDelete
)

// editorFinishedMsg arrives when the blocking editor subprocess exits.
type editorFinishedMsg struct {
	id  string
	err error
}

// previewFinishedMsg arrives when the blocking preview subprocess exits.
type previewFinishedMsg struct {
	err error
}

type model struct {
	store *notestore.Store
	opts  Options
	style styles

	notes  []models.Summary
	cursor int

	mode       uiMode
	titleInput textinput.Model
	descInput  textinput.Model

	status string
	width  int
	height int
}

func initialModel(store *notestore.Store, opts Options) model {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 256

	desc := textinput.New()
	desc.Placeholder = "Description (required)"
	desc.CharLimit = 512

	return model{
		store:      store,
		opts:       opts,
		style:      newStyles(opts.Theme),
		notes:      store.List(),
		titleInput: title,
		descInput:  desc,
	}
}

// Run starts the terminal session and blocks until the user quits.
func Run(store *notestore.Store, opts Options) error {
	p := tea.NewProgram(initialModel(store, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) refresh() {
	m.notes = m.store.List()
	if m.cursor >= len(m.notes) {
		m.cursor = len(m.notes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// execCmd builds a blocking subprocess for "command path" with the terminal
// handed over to the child, per the configured editor/preview commands.
func execCmd(command, path string, done func(error) tea.Msg) tea.Cmd {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return func() tea.Msg { return done(fmt.Errorf("empty command")) }
	}
	args := append(parts[1:], path)
	c := exec.Command(parts[0], args...)
	return tea.ExecProcess(c, done)
}

func (m model) openEditor(id string) (tea.Model, tea.Cmd) {
	path, err := m.store.OpenForEdit(id)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m, execCmd(m.opts.Editor, path, func(err error) tea.Msg {
		return editorFinishedMsg{id: id, err: err}
	})
}

func (m model) openPreview(id string) (tea.Model, tea.Cmd) {
	// ReadForPreview distinguishes an unknown id from an indexed note
	// whose file is gone; both must surface before the subprocess runs.
	if _, err := m.store.ReadForPreview(id); err != nil {
		m.status = err.Error()
		return m, nil
	}
	path, err := m.store.OpenForEdit(id)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m, execCmd(m.opts.PreviewCmd, path, func(err error) tea.Msg {
		return previewFinishedMsg{err: err}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			m.status = "editor: " + msg.err.Error()
		}
		if err := m.store.FinishEdit(msg.id); err != nil {
			m.status = err.Error()
		}
		m.refresh()
		return m, nil

	case previewFinishedMsg:
		if msg.err != nil {
			m.status = "preview: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeTitleInput:
			return m.updateTitleInput(msg)
		case modeDescInput:
			return m.updateDescInput(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.notes)-1 {
			m.cursor++
		}

	case "n":
		m.mode = modeTitleInput
		m.status = ""
		m.titleInput.SetValue("")
		m.descInput.SetValue("")
		m.titleInput.Focus()
		return m, textinput.Blink

	case "d":
		if len(m.notes) == 0 {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("delete %q? (y/n)", m.notes[m.cursor].Title)

	case "p":
		if len(m.notes) == 0 {
			return m, nil
		}
		return m.openPreview(m.notes[m.cursor].ID)

	case "enter":
		if len(m.notes) == 0 {
			return m, nil
		}
		return m.openEditor(m.notes[m.cursor].ID)
	}
	return m, nil
}

func (m model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	m.status = ""
	if msg.String() != "y" {
		return m, nil
	}
	if len(m.notes) > 0 {
		if err := m.store.Delete(m.notes[m.cursor].ID); err != nil {
			m.status = err.Error()
		}
	}
	m.refresh()
	return m, nil
}

func (m model) updateTitleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		return m, nil
	case tea.KeyEnter:
		m.titleInput.Blur()
		m.descInput.Focus()
		m.mode = modeDescInput
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m model) updateDescInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		return m, nil
	case tea.KeyEnter:
		note, err := m.store.Create(m.titleInput.Value(), m.descInput.Value())
		if err != nil {
			// Bad input keeps the form open so the user can fix it.
			m.status = err.Error()
			return m, nil
		}
		m.descInput.Blur()
		m.mode = modeList
		m.cursor = 0
		m.refresh()
		return m.openEditor(note.ID)
	}
	var cmd tea.Cmd
	m.descInput, cmd = m.descInput.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.style.title.Render("dagaz — terminal notes"))
	b.WriteString("\n")
	b.WriteString(m.style.help.Render("[enter] open  [n] new  [d] delete  [p] preview  [q] quit"))
	b.WriteString("\n\n")

	switch m.mode {
	case modeTitleInput, modeDescInput:
		b.WriteString("New note\n\n")
		b.WriteString("  " + m.titleInput.View() + "\n")
		b.WriteString("  " + m.descInput.View() + "\n")
	default:
		b.WriteString(m.listView())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.style.errText.Render(m.status))
	}
	return b.String()
}

func (m model) listView() string {
	if len(m.notes) == 0 {
		return "No notes found. Press 'n' to create a new note.\n"
	}

	// Window the list to the visible height: header, help, blank, status.
	visible := m.height - 6
	if visible < 1 {
		visible = len(m.notes)
	}
	offset := 0
	if m.cursor >= visible {
		offset = m.cursor - visible + 1
	}

	var b strings.Builder
	for i := offset; i < len(m.notes) && i < offset+visible; i++ {
		n := m.notes[i]
		line := fmt.Sprintf("%s (%s)", n.Title, n.CreatedAt.Format(m.opts.DateLayout))
		if m.width > 8 && len(line) > m.width-8 {
			line = line[:m.width-8]
		}
		if i == m.cursor {
			b.WriteString("  " + m.style.selected.Render(line))
		} else {
			b.WriteString("  " + m.style.normal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
