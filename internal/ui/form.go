package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/records"
	"github.com/gravitrone/datafiles/internal/ui/components"
)

// --- Messages ---

type recordSavedMsg struct {
	mode   formMode
	record *api.Record
}

type saveFailedMsg struct {
	mode formMode
	err  error
}

type recordLoadedMsg struct{ record *api.Record }
type recordLoadFailedMsg struct{ err error }

// --- Form ---

type formMode int

const (
	formCreate formMode = iota
	formUpdate
)

const (
	formFieldTitle = iota
	formFieldDescription
	formFieldFile1
	formFieldFile2
	formFieldFile3
	formFieldSubmit
	formFieldCount
)

const pickerHeight = 10

// FormModel edits a title, a description and three attachment slots. The
// create and update pages share it and differ in their accept policy and in
// the workflow they submit to.
type FormModel struct {
	svc         *records.Service
	mode        formMode
	id          api.RowID
	dir         string
	title       textinput.Model
	description textinput.Model
	files       [api.SlotCount]string
	focus       int
	picking     bool
	pickSlot    int
	picker      filepicker.Model
	loading     bool
	loadFailed  bool
	saving      bool
	errs        map[string]string
	width       int
	height      int
}

func newFormModel(svc *records.Service, mode formMode, dir string) FormModel {
	titlePlaceholder, descPlaceholder := "Enter title", "Enter description"
	if mode == formUpdate {
		titlePlaceholder, descPlaceholder = "Enter product title", "Enter product description"
	}
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = titlePlaceholder
	title.CharLimit = 255
	title.Focus()

	description := textinput.New()
	description.Prompt = ""
	description.Placeholder = descPlaceholder
	description.CharLimit = 1024

	if dir == "" {
		dir = "."
	}
	return FormModel{
		svc:         svc,
		mode:        mode,
		dir:         dir,
		title:       title,
		description: description,
		errs:        map[string]string{},
	}
}

func (m FormModel) accept() records.Accept {
	if m.mode == formUpdate {
		return records.AcceptImages
	}
	return records.AcceptAny
}

func (m FormModel) Init() tea.Cmd {
	if m.mode == formUpdate {
		return tea.Batch(textinput.Blink, m.loadRecord())
	}
	return textinput.Blink
}

func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case recordLoadedMsg:
		if msg.record == nil || msg.record.ID != m.id {
			return m, nil
		}
		m.loading = false
		m.title.SetValue(msg.record.Title)
		m.description.SetValue(msg.record.Description)
		return m, nil
	case recordLoadFailedMsg:
		m.loading = false
		m.loadFailed = true
		return m, nil
	case saveFailedMsg:
		if msg.mode != m.mode {
			return m, nil
		}
		m.saving = false
		var verr *records.ValidationError
		if errors.As(msg.err, &verr) {
			m.setFieldErrors(verr)
		}
		return m, nil
	case tea.KeyMsg:
		if m.picking {
			return m.handlePickerKeys(msg)
		}
		return m.handleKeys(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	var titleCmd, descCmd tea.Cmd
	m.title, titleCmd = m.title.Update(msg)
	m.description, descCmd = m.description.Update(msg)
	return m, tea.Batch(titleCmd, descCmd)
}

func (m FormModel) handleKeys(msg tea.KeyMsg) (FormModel, tea.Cmd) {
	if m.loading || m.saving {
		return m, nil
	}
	// A record that could not be loaded is never submitted.
	if m.loadFailed {
		if isBack(msg) {
			return m, navigate(pageList, "")
		}
		return m, nil
	}
	switch {
	case isSubmit(msg):
		return m.submit()
	case isBack(msg):
		return m, navigate(pageList, "")
	case isNextField(msg):
		return m, m.setFocus((m.focus + 1) % formFieldCount)
	case isPrevField(msg):
		return m, m.setFocus((m.focus - 1 + formFieldCount) % formFieldCount)
	}

	switch m.focus {
	case formFieldTitle, formFieldDescription:
		if isEnter(msg) {
			return m, m.setFocus(m.focus + 1)
		}
		var cmd tea.Cmd
		if m.focus == formFieldTitle {
			m.title, cmd = m.title.Update(msg)
			delete(m.errs, "title")
		} else {
			m.description, cmd = m.description.Update(msg)
			delete(m.errs, "description")
		}
		return m, cmd
	case formFieldFile1, formFieldFile2, formFieldFile3:
		slot := m.focus - formFieldFile1 + 1
		switch {
		case isEnter(msg):
			return m.openPicker(slot)
		case isKey(msg, "backspace", "delete", "x"):
			m.files[slot-1] = ""
			delete(m.errs, api.SlotColumn(slot))
		}
	case formFieldSubmit:
		if isEnter(msg) {
			return m.submit()
		}
	}
	return m, nil
}

func (m *FormModel) setFocus(field int) tea.Cmd {
	m.focus = field
	m.title.Blur()
	m.description.Blur()
	switch field {
	case formFieldTitle:
		return m.title.Focus()
	case formFieldDescription:
		return m.description.Focus()
	}
	return nil
}

func (m FormModel) openPicker(slot int) (FormModel, tea.Cmd) {
	p := filepicker.New()
	p.CurrentDirectory = m.dir
	if current := m.files[slot-1]; current != "" {
		p.CurrentDirectory = filepath.Dir(current)
	}
	p.AllowedTypes = pickerTypes(m.accept())
	p.AutoHeight = false
	p.SetHeight(pickerHeight)
	p.ShowPermissions = false

	m.picker = p
	m.picking = true
	m.pickSlot = slot
	return m, m.picker.Init()
}

// pickerTypes lists the suffixes the file picker enables. The picker matches
// case-sensitively, so upper-case variants are included.
func pickerTypes(accept records.Accept) []string {
	exts := accept.Extensions()
	if exts == nil {
		return nil
	}
	out := make([]string, 0, 2*len(exts))
	for _, ext := range exts {
		out = append(out, ext, strings.ToUpper(ext))
	}
	return out
}

func (m FormModel) handlePickerKeys(msg tea.KeyMsg) (FormModel, tea.Cmd) {
	if isBack(msg) {
		m.picking = false
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	column := api.SlotColumn(m.pickSlot)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.files[m.pickSlot-1] = path
		m.dir = filepath.Dir(path)
		delete(m.errs, column)
		m.picking = false
		return m, nil
	}
	if ok, _ := m.picker.DidSelectDisabledFile(msg); ok {
		m.errs[column] = fmt.Sprintf("File %d: only image files are accepted", m.pickSlot)
	}
	return m, cmd
}

func (m FormModel) draft() records.Draft {
	d := records.Draft{
		Title:       m.title.Value(),
		Description: m.description.Value(),
	}
	for i, path := range m.files {
		if path != "" {
			d.SetFile(i+1, records.FromPath(path))
		}
	}
	return d
}

func (m FormModel) submit() (FormModel, tea.Cmd) {
	d := m.draft()
	if err := d.Validate(m.accept()); err != nil {
		var verr *records.ValidationError
		if errors.As(err, &verr) {
			m.setFieldErrors(verr)
		}
		return m, nil
	}
	m.errs = map[string]string{}
	m.saving = true

	svc, mode, id := m.svc, m.mode, m.id
	return m, func() tea.Msg {
		var (
			rec *api.Record
			err error
		)
		if mode == formUpdate {
			rec, err = svc.Update(context.Background(), id, d)
		} else {
			rec, err = svc.Create(context.Background(), d)
		}
		if err != nil {
			return saveFailedMsg{mode: mode, err: err}
		}
		return recordSavedMsg{mode: mode, record: rec}
	}
}

func (m *FormModel) setFieldErrors(verr *records.ValidationError) {
	m.errs = make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		m.errs[f.Field] = f.Message
	}
}

func (m FormModel) dirty() bool {
	if m.saving {
		return false
	}
	if m.mode == formCreate && (m.title.Value() != "" || m.description.Value() != "") {
		return true
	}
	for _, path := range m.files {
		if path != "" {
			return true
		}
	}
	return false
}

func (m FormModel) heading() string {
	if m.mode == formUpdate {
		return "Update #" + m.id.String()
	}
	return "Create"
}

func (m FormModel) View() string {
	if m.loading {
		return "  " + HintStyle.Render(records.LoadingMessage+"...")
	}
	if m.loadFailed {
		return components.AlertPanel(records.FailureTitle, records.FailureDescription, m.width)
	}
	if m.saving {
		return components.Indent(components.BusyDialog(m.heading(), records.LoadingMessage+"..."), 1)
	}
	if m.picking {
		return m.renderPicker()
	}

	var b strings.Builder
	m.renderLabel(&b, formFieldTitle, "Title")
	b.WriteString("  " + m.title.View())
	m.renderFieldError(&b, "title")
	b.WriteString("\n\n")

	m.renderLabel(&b, formFieldDescription, "Description")
	b.WriteString("  " + m.description.View())
	m.renderFieldError(&b, "description")
	b.WriteString("\n\n")

	for slot := 1; slot <= api.SlotCount; slot++ {
		field := formFieldFile1 + slot - 1
		m.renderLabel(&b, field, fmt.Sprintf("File %d", slot))
		value := HintStyle.Render("No file chosen")
		if path := m.files[slot-1]; path != "" {
			value = ValueStyle.Render(filepath.Base(path))
		}
		b.WriteString("  " + value)
		m.renderFieldError(&b, api.SlotColumn(slot))
		b.WriteString("\n\n")
	}

	submit := HintStyle.Render("[ Submit ]")
	if m.focus == formFieldSubmit {
		submit = FocusStyle.Render("> [ Submit ]")
	} else {
		submit = "  " + submit
	}
	b.WriteString(submit)
	return components.Panel(m.heading(), b.String(), m.width)
}

func (m FormModel) renderLabel(b *strings.Builder, field int, label string) {
	if field == m.focus {
		b.WriteString(FocusStyle.Render("> "+label+":") + "\n")
		return
	}
	b.WriteString("  " + HintStyle.Render(label+":") + "\n")
}

func (m FormModel) renderFieldError(b *strings.Builder, field string) {
	if msg, ok := m.errs[field]; ok {
		b.WriteString("\n  " + FieldErrorStyle.Render(msg))
	}
}

func (m FormModel) renderPicker() string {
	header := HintStyle.Render(components.Fit(m.picker.CurrentDirectory, components.InnerWidth(m.width)))
	body := header + "\n\n" + m.picker.View()
	if msg, ok := m.errs[api.SlotColumn(m.pickSlot)]; ok {
		body += "\n" + FieldErrorStyle.Render(msg)
	}
	title := fmt.Sprintf("File %d", m.pickSlot)
	if m.accept() == records.AcceptImages {
		title += " (images)"
	}
	return components.Panel(title, body, m.width)
}
