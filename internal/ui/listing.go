package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/records"
	"github.com/gravitrone/datafiles/internal/ui/components"
)

// --- Messages ---

type recordsLoadedMsg struct {
	items []api.Record
	err   error
}

const (
	listWindow        = 12
	listFallbackWidth = 96
)

// --- Listing Model ---

// ListingModel shows every record of the table.
type ListingModel struct {
	svc     *records.Service
	items   []api.Record
	cursor  *components.Cursor
	loading bool
	width   int
	height  int
}

// NewListingModel builds the listing page.
func NewListingModel(svc *records.Service) ListingModel {
	return ListingModel{
		svc:     svc,
		cursor:  components.NewCursor(listWindow),
		loading: true,
	}
}

func (m ListingModel) Init() tea.Cmd {
	return m.loadRecords()
}

func (m ListingModel) Update(msg tea.Msg) (ListingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		m.loading = false
		m.items = msg.items
		m.cursor.Reset(len(msg.items))
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m ListingModel) handleKeys(msg tea.KeyMsg) (ListingModel, tea.Cmd) {
	switch {
	case isDown(msg), isKey(msg, "j"):
		m.cursor.Next()
	case isUp(msg), isKey(msg, "k"):
		m.cursor.Prev()
	case isKey(msg, "c"):
		return m, navigate(pageCreate, "")
	case isKey(msg, "r"):
		m.loading = true
		return m, m.loadRecords()
	case isEnter(msg), isKey(msg, "d"):
		if rec := m.selected(); rec != nil {
			return m, navigate(pageDetail, rec.ID)
		}
	case isKey(msg, "u"):
		if rec := m.selected(); rec != nil {
			return m, navigate(pageUpdate, rec.ID)
		}
	}
	return m, nil
}

func (m ListingModel) selected() *api.Record {
	if m.loading {
		return nil
	}
	idx := m.cursor.Index()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}
	return &m.items[idx]
}

func (m ListingModel) View() string {
	if m.loading {
		return "  " + HintStyle.Render(records.LoadingMessage+"...")
	}
	if len(m.items) == 0 {
		return components.EmptyPanel("Records", "No records yet.", "Press c to create one", m.width)
	}

	width := components.InnerWidth(m.width)
	if width <= 0 {
		width = listFallbackWidth
	}
	grid := components.Grid{Columns: listColumns(width), Active: -1}

	start, end := m.cursor.Window()
	for i := start; i < end; i++ {
		r := m.items[i]
		if i == m.cursor.Index() {
			grid.Active = len(grid.Rows)
		}
		grid.Rows = append(grid.Rows, []string{
			r.ID.String(),
			r.Title,
			r.Description,
			records.FormatTimestamp(r.CreatedAt),
			records.FormatTimestamp(r.UpdatedAt),
		})
	}

	count := HintStyle.Render(fmt.Sprintf("%d total", len(m.items)))
	return components.Panel("Records", count+"\n\n"+grid.Render(width)+"\n", m.width)
}

// listColumns splits width between the record columns. Timestamps keep a
// fixed width; title and description share the rest 2:3.
func listColumns(width int) []components.Column {
	const idWidth, atWidth = 8, 17
	rest := max(width-idWidth-2*atWidth-6, 20)
	title := rest * 2 / 5
	return []components.Column{
		{Header: "ID", Width: idWidth},
		{Header: "Title", Width: title},
		{Header: "Description", Width: rest - title},
		{Header: "Create At", Width: atWidth},
		{Header: "Updated At", Width: atWidth},
	}
}

func (m ListingModel) loadRecords() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		// A failed fetch renders as an empty list.
		items, err := svc.List(context.Background())
		if err != nil {
			return recordsLoadedMsg{err: err}
		}
		return recordsLoadedMsg{items: items}
	}
}
