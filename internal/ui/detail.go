package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/records"
	"github.com/gravitrone/datafiles/internal/ui/components"
)

// --- Messages ---

type detailLoadedMsg struct{ detail *records.Detail }
type downloadedMsg struct{ path string }

// --- Detail Model ---

// DetailModel shows one record with its attachment links.
type DetailModel struct {
	svc    *records.Service
	id     api.RowID
	dir    string
	detail *records.Detail
	width  int
	height int
}

// NewDetailModel builds the detail page for id. Downloads are written to dir.
func NewDetailModel(svc *records.Service, id api.RowID, dir string) DetailModel {
	return DetailModel{svc: svc, id: id, dir: dir}
}

func (m DetailModel) Init() tea.Cmd {
	return m.loadDetail()
}

func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.detail == nil || msg.detail.Record.ID != m.id {
			return m, nil
		}
		m.detail = msg.detail
		return m, nil
	case tea.KeyMsg:
		switch {
		case isBack(msg), isKey(msg, "backspace"):
			return m, navigate(pageList, "")
		case isKey(msg, "u"):
			return m, navigate(pageUpdate, m.id)
		case isKey(msg, "r"):
			m.detail = nil
			return m, m.loadDetail()
		}
		if slot, ok := slotForKey(msg); ok {
			return m, m.download(slot)
		}
	}
	return m, nil
}

func (m DetailModel) View() string {
	if m.detail == nil {
		return "  " + HintStyle.Render(records.LoadingMessage+"...")
	}
	rec := m.detail.Record
	rows := []components.Field{
		{Label: "Title", Value: rec.Title},
		{Label: "Description", Value: rec.Description},
		{Label: "Create At", Value: records.FormatTimestamp(rec.CreatedAt)},
		{Label: "Updated At", Value: records.FormatTimestamp(rec.UpdatedAt)},
	}
	for slot := 1; slot <= api.SlotCount; slot++ {
		value := "-"
		if dl, ok := m.detail.Download(slot); ok {
			value = fmt.Sprintf("%s  [%d] download", dl.Filename, slot)
		}
		rows = append(rows, components.Field{Label: fmt.Sprintf("File %d", slot), Value: value})
	}

	out := components.Fields("Detail #"+rec.ID.String(), rows, m.width)
	if links := m.detail.Downloads(); len(links) > 0 {
		var b strings.Builder
		for i, dl := range links {
			b.WriteString(HintStyle.Render(dl.Filename) + "\n")
			b.WriteString(ValueStyle.Render(components.Fit(dl.URL, components.InnerWidth(m.width))))
			if i < len(links)-1 {
				b.WriteString("\n\n")
			}
		}
		out += "\n\n" + components.Panel("Links", b.String(), m.width)
	}
	return out
}

func (m DetailModel) loadDetail() tea.Cmd {
	svc, id := m.svc, m.id
	return func() tea.Msg {
		// The page keeps its loading state on failure; the app shows the toast.
		detail, err := svc.Detail(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		return detailLoadedMsg{detail: detail}
	}
}

func (m DetailModel) download(slot int) tea.Cmd {
	if m.detail == nil {
		return nil
	}
	dl, ok := m.detail.Download(slot)
	if !ok {
		return nil
	}
	svc, id := m.svc, m.id
	path := filepath.Join(m.dir, dl.LocalName())
	return func() tea.Msg {
		saved, err := records.SaveFile(path, false, func(w io.Writer) error {
			_, err := svc.Fetch(context.Background(), id, slot, w)
			return err
		})
		if err != nil {
			return errMsg{err}
		}
		return downloadedMsg{path: saved}
	}
}
