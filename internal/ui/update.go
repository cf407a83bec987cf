package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/records"
)

// NewUpdateModel builds the update form for id. The form is prefilled once the
// record loads; attachment slots only accept images.
func NewUpdateModel(svc *records.Service, id api.RowID, dir string) FormModel {
	m := newFormModel(svc, formUpdate, dir)
	m.id = id
	m.loading = true
	return m
}

func (m FormModel) loadRecord() tea.Cmd {
	svc, id := m.svc, m.id
	return func() tea.Msg {
		rec, err := svc.Get(context.Background(), id)
		if err != nil {
			return recordLoadFailedMsg{err: err}
		}
		return recordLoadedMsg{record: rec}
	}
}
