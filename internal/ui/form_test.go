package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/api/apitest"
	"github.com/gravitrone/datafiles/internal/records"
	"github.com/gravitrone/datafiles/internal/ui/components"
)

func typeText(m FormModel, text string) FormModel {
	for _, r := range text {
		m, _ = m.Update(runeKey(r))
	}
	return m
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestCreateFormTypesIntoFocusedField(t *testing.T) {
	_, svc := testService(t)
	m := NewCreateModel(svc, t.TempDir())

	m = typeText(m, "Report")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Q1 results")

	assert.Equal(t, "Report", m.title.Value())
	assert.Equal(t, "Q1 results", m.description.Value())
	assert.Equal(t, formFieldDescription, m.focus)
	assert.True(t, m.dirty())
}

func TestCreateFormPlaceholdersDifferFromUpdate(t *testing.T) {
	_, svc := testService(t)
	assert.Equal(t, "Enter title", NewCreateModel(svc, "").title.Placeholder)
	assert.Equal(t, "Enter product description", NewUpdateModel(svc, "1", "").description.Placeholder)
}

func TestCreateFormValidatesInline(t *testing.T) {
	srv, svc := testService(t)
	m := NewCreateModel(svc, t.TempDir())
	m.width = 100

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.False(t, m.saving)
	assert.Equal(t, "Title is required", m.errs["title"])
	assert.Equal(t, "Description is required", m.errs["description"])
	assert.Empty(t, srv.Calls())

	clean := components.Clean(m.View())
	assert.Contains(t, clean, "Title is required")

	m = typeText(m, "x")
	assert.NotContains(t, m.errs, "title")
}

func TestCreateFormSubmitsDraft(t *testing.T) {
	srv, svc := testService(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "q1.pdf", bytes.Repeat([]byte{'x'}, 10*1024))

	m := NewCreateModel(svc, dir)
	m = typeText(m, "Report")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Q1 results")
	m.files[0] = path

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, m.saving)
	assert.False(t, m.dirty())
	assert.Contains(t, components.Clean(m.View()), "Please wait")

	msg := runCmd(t, cmd)
	saved, ok := msg.(recordSavedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, formCreate, saved.mode)

	stored, ok := srv.Record(saved.record.ID.String())
	require.True(t, ok)
	assert.Equal(t, "Report", stored.Title)
	blob, ok := srv.Blob(saved.record.ID.String(), "file_1")
	require.True(t, ok)
	assert.Len(t, blob, 10*1024)
}

func TestCreateFormSurfacesRemoteFailure(t *testing.T) {
	srv, svc := testService(t)
	srv.Fail(api.OpInsert, "")

	m := NewCreateModel(svc, t.TempDir())
	m.title.SetValue("t")
	m.description.SetValue("d")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	msg := runCmd(t, cmd)
	failed, ok := msg.(saveFailedMsg)
	require.True(t, ok, "got %T", msg)

	m, _ = m.Update(failed)
	assert.False(t, m.saving)
	assert.Empty(t, m.errs)
	assert.Empty(t, srv.Records())
}

func TestFormPickerSelectsFile(t *testing.T) {
	_, svc := testService(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "q1.pdf", []byte("%PDF"))

	m := NewCreateModel(svc, dir)
	m.focus = formFieldFile1
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.picking)
	m, _ = m.Update(runCmd(t, cmd))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.picking)
	assert.Equal(t, path, m.files[0])
	assert.Contains(t, components.Clean(m.View()), "q1.pdf")

	m, _ = m.Update(runeKey('x'))
	assert.Empty(t, m.files[0])
}

func TestUpdatePickerRejectsNonImages(t *testing.T) {
	_, svc := testService(t)
	dir := t.TempDir()
	writeFile(t, dir, "q1.pdf", []byte("%PDF"))

	m := NewUpdateModel(svc, "r1", dir)
	m.loading = false
	m.focus = formFieldFile2
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(runCmd(t, cmd))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.picking)
	assert.Empty(t, m.files[1])
	assert.Equal(t, "File 2: only image files are accepted", m.errs["file_2"])

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.picking)
}

func TestPickerTypesIncludeUpperCase(t *testing.T) {
	assert.Nil(t, pickerTypes(records.AcceptAny))
	types := pickerTypes(records.AcceptImages)
	assert.Contains(t, types, ".png")
	assert.Contains(t, types, ".PNG")
}

func TestUpdateFormPrefillsAndUploadsInBackground(t *testing.T) {
	srv, svc := testService(t)
	ids := srv.Seed(1)
	id := api.RowID(ids[0])
	dir := t.TempDir()
	chart := writeFile(t, dir, "chart.png", []byte("png"))

	m := NewUpdateModel(svc, id, dir)
	assert.Contains(t, m.View(), "Please wait")
	m, _ = m.Update(m.loadRecord()())
	assert.False(t, m.loading)
	assert.Equal(t, "Record 1", m.title.Value())
	assert.Equal(t, "Description 1", m.description.Value())
	assert.False(t, m.dirty())

	m.title.SetValue("Renamed")
	m.files[2] = chart
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	msg := runCmd(t, cmd)
	saved, ok := msg.(recordSavedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, formUpdate, saved.mode)

	svc.Wait()
	stored, _ := srv.Record(ids[0])
	assert.Equal(t, "Renamed", stored.Title)
	blob, ok := srv.Blob(ids[0], "file_3")
	require.True(t, ok)
	assert.Equal(t, "png", string(blob))
}

func TestUpdateFormIgnoresOtherRecord(t *testing.T) {
	_, svc := testService(t)
	m := NewUpdateModel(svc, "a", "")

	m, _ = m.Update(recordLoadedMsg{record: &api.Record{ID: "b", Title: "other"}})
	assert.True(t, m.loading)
	assert.Empty(t, m.title.Value())
}

func TestUpdateFormLoadFailure(t *testing.T) {
	srv, svc := testService(t)
	srv.Fail(apitest.OpSelect, "")

	m := NewUpdateModel(svc, "missing", "")
	msg := m.loadRecord()()
	_, ok := msg.(recordLoadFailedMsg)
	require.True(t, ok, "got %T", msg)
}

func TestUpdateFormCannotSubmitAfterLoadFailure(t *testing.T) {
	srv, svc := testService(t)
	m := NewUpdateModel(svc, "does-not-exist", "")
	m.width = 100

	m, _ = m.Update(m.loadRecord()())
	assert.False(t, m.loading)
	assert.True(t, m.loadFailed)
	assert.Contains(t, components.Clean(m.View()), records.FailureTitle)

	m = typeText(m, "t")
	assert.Empty(t, m.title.Value())
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.False(t, m.saving)
	assert.Empty(t, srv.CallsFor(apitest.OpUpdate))

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, navigateMsg{to: pageList}, runCmd(t, cmd))
}

func TestFormEscNavigatesBack(t *testing.T) {
	_, svc := testService(t)
	m := NewCreateModel(svc, "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, navigateMsg{to: pageList}, runCmd(t, cmd))
}
