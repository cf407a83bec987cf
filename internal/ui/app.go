package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/errs"
	"github.com/gravitrone/datafiles/internal/records"
	"github.com/gravitrone/datafiles/internal/ui/components"
)

// --- Page Constants ---

type page int

const (
	pageList page = iota
	pageDetail
	pageCreate
	pageUpdate
)

var pageNames = []string{"Records", "Detail", "Create", "Update"}

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}
type navigateMsg struct {
	to page
	id api.RowID
}

func navigate(to page, id api.RowID) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{to: to, id: id}
	}
}

type toastLevel int

const (
	toastSuccess toastLevel = iota
	toastError
)

type appToast struct {
	level toastLevel
	text  string
}

// --- App Model ---

// App is the root TUI model that routes between pages.
type App struct {
	svc         *records.Service
	dir         string
	page        page
	width       int
	height      int
	toast       *appToast
	quitConfirm bool

	listing ListingModel
	detail  DetailModel
	create  FormModel
	update  FormModel
}

// Option configures an App.
type Option func(*App)

// WithDownloadDir sets where downloaded attachments are written and where
// the file picker starts.
func WithDownloadDir(dir string) Option {
	return func(a *App) {
		if dir != "" {
			a.dir = dir
		}
	}
}

// NewApp builds the root model. It starts on the listing page.
func NewApp(svc *records.Service, opts ...Option) App {
	a := App{
		svc:     svc,
		dir:     ".",
		page:    pageList,
		listing: NewListingModel(svc),
	}
	for _, opt := range opts {
		opt(&a)
	}
	a.create = NewCreateModel(svc, a.dir)
	return a
}

func (a App) Init() tea.Cmd {
	return a.listing.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case errMsg:
		toast := a.setToast(toastError, msg.err.Error())
		return a, toast
	case clearToastMsg:
		a.toast = nil
		return a, nil
	case navigateMsg:
		return a.open(msg.to, msg.id)
	case downloadedMsg:
		toast := a.setToast(toastSuccess, "Saved "+msg.path)
		return a, toast

	case recordSavedMsg:
		text := records.CreatedMessage
		if msg.mode == formUpdate {
			text = records.UpdatedMessage
		}
		next, cmd := a.open(pageList, "")
		toast := next.setToast(toastSuccess, text)
		return next, tea.Batch(cmd, toast)
	case saveFailedMsg:
		var cmd tea.Cmd
		a, cmd = a.delegate(msg)
		if errors.Is(msg.err, errs.ErrValidation) {
			return a, cmd
		}
		toast := a.setToast(toastError, msg.err.Error())
		return a, tea.Batch(cmd, toast)
	case recordsLoadedMsg:
		var cmd tea.Cmd
		a, cmd = a.delegate(msg)
		if msg.err == nil {
			return a, cmd
		}
		toast := a.setToast(toastError, msg.err.Error())
		return a, tea.Batch(cmd, toast)
	case recordLoadFailedMsg:
		var cmd tea.Cmd
		a, cmd = a.delegate(msg)
		toast := a.setToast(toastError, msg.err.Error())
		return a, tea.Batch(cmd, toast)

	case tea.KeyMsg:
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if isKey(msg, "ctrl+c") || (isQuit(msg) && !a.typing()) {
			if a.hasUnsaved() {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		}
	}

	return a.delegate(msg)
}

func (a App) delegate(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.page {
	case pageList:
		a.listing, cmd = a.listing.Update(msg)
	case pageDetail:
		a.detail, cmd = a.detail.Update(msg)
	case pageCreate:
		a.create, cmd = a.create.Update(msg)
	case pageUpdate:
		a.update, cmd = a.update.Update(msg)
	}
	return a, cmd
}

// open switches pages. Every page starts fresh, the listing refetches.
func (a App) open(to page, id api.RowID) (App, tea.Cmd) {
	a.page = to
	var cmd tea.Cmd
	switch to {
	case pageList:
		a.listing.loading = true
		cmd = a.listing.Init()
	case pageDetail:
		a.detail = NewDetailModel(a.svc, id, a.dir)
		cmd = a.detail.Init()
	case pageCreate:
		a.create = NewCreateModel(a.svc, a.dir)
		cmd = a.create.Init()
	case pageUpdate:
		a.update = NewUpdateModel(a.svc, id, a.dir)
		cmd = a.update.Init()
	}
	a.resize()
	return a, cmd
}

func (a *App) resize() {
	a.listing.width, a.listing.height = a.width, a.height
	a.detail.width, a.detail.height = a.width, a.height
	a.create.width, a.create.height = a.width, a.height
	a.update.width, a.update.height = a.width, a.height
}

// typing reports whether plain letters belong to a form.
func (a App) typing() bool {
	return a.page == pageCreate || a.page == pageUpdate
}

func (a App) hasUnsaved() bool {
	switch a.page {
	case pageCreate:
		return a.create.dirty()
	case pageUpdate:
		return a.update.dirty()
	}
	return false
}

func (a App) View() string {
	banner := center(RenderBanner(), a.width)
	pages := center(a.renderPages(), a.width)

	var content string
	switch a.page {
	case pageList:
		content = a.listing.View()
	case pageDetail:
		content = a.detail.View()
	case pageCreate:
		content = a.create.View()
	case pageUpdate:
		content = a.update.View()
	}
	if a.quitConfirm {
		content = a.renderQuitConfirm()
	}
	content = center(content, a.width)

	hints := components.KeyBar(a.statusHints(), a.width)

	feedback := ""
	if a.toast != nil {
		feedback = "\n\n" + center(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n\n%s%s", banner, pages, content, hints, feedback)
}

func (a App) renderPages() string {
	segments := make([]string, 0, len(pageNames))
	for i, name := range pageNames {
		if page(i) == a.page {
			segments = append(segments, TabActiveStyle.Render(name))
		} else {
			segments = append(segments, TabInactiveStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (a App) statusHints() []string {
	if a.quitConfirm {
		return []string{
			components.KeyHint("y", "Quit"),
			components.KeyHint("n", "Stay"),
		}
	}
	switch a.page {
	case pageDetail:
		return []string{
			components.KeyHint("1-3", "Download"),
			components.KeyHint("u", "Update"),
			components.KeyHint("r", "Reload"),
			components.KeyHint("esc", "Back"),
			components.KeyHint("q", "Quit"),
		}
	case pageCreate, pageUpdate:
		form := a.create
		if a.page == pageUpdate {
			form = a.update
		}
		if form.picking {
			return []string{
				components.KeyHint("↑/↓", "Browse"),
				components.KeyHint("enter", "Choose"),
				components.KeyHint("esc", "Cancel"),
			}
		}
		return []string{
			components.KeyHint("tab", "Next"),
			components.KeyHint("enter", "Pick File"),
			components.KeyHint("x", "Clear File"),
			components.KeyHint("ctrl+s", "Submit"),
			components.KeyHint("esc", "Back"),
		}
	}
	return []string{
		components.KeyHint("↑/↓", "Select"),
		components.KeyHint("enter", "Detail"),
		components.KeyHint("u", "Update"),
		components.KeyHint("c", "Create"),
		components.KeyHint("r", "Reload"),
		components.KeyHint("q", "Quit"),
	}
}

func (a App) renderQuitConfirm() string {
	body := "You have unsaved changes. Quit anyway?"
	return components.Indent(components.ConfirmDialog("Quit", body), 1)
}

// setToast shows a notice for a few seconds. Error notices render generic copy.
func (a *App) setToast(level toastLevel, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.CleanLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	if a.toast.level == toastError {
		return components.AlertPanel(records.FailureTitle, records.FailureDescription, a.width)
	}
	return components.SuccessPanel("Success", a.toast.text, a.width)
}

// center places a block in the middle of width columns, keeping the
// alignment of its lines. Unknown widths leave it untouched.
func center(s string, width int) string {
	if width <= 0 {
		return s
	}
	block := lipgloss.Width(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = line + strings.Repeat(" ", max(block-lipgloss.Width(line), 0))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines, "\n"))
}
