package ui

import (
	"context"
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

func createRecord(t *testing.T, svc *records.Service, files map[int]*records.Upload) *api.Record {
	t.Helper()
	d := records.Draft{Title: "Report", Description: "Q1 results"}
	for slot, u := range files {
		d.SetFile(slot, u)
	}
	rec, err := svc.Create(context.Background(), d)
	require.NoError(t, err)
	return rec
}

func TestDetailLoadsRecordAndLinks(t *testing.T) {
	_, svc := testService(t)
	rec := createRecord(t, svc, map[int]*records.Upload{
		1: records.FromBytes("q1.pdf", []byte("%PDF")),
	})

	model := NewDetailModel(svc, rec.ID, t.TempDir())
	model.width = 120
	assert.Contains(t, model.View(), "Please wait")

	model, _ = model.Update(runCmd(t, model.Init()))
	require.NotNil(t, model.detail)

	clean := components.Clean(model.View())
	assert.Contains(t, clean, "Detail #"+rec.ID.String())
	assert.Contains(t, clean, "Report")
	assert.Contains(t, clean, "Q1 results")
	assert.Contains(t, clean, "q1.pdf")
	assert.Contains(t, clean, "Links")
}

func TestDetailStaysLoadingOnFailure(t *testing.T) {
	srv, svc := testService(t)
	ids := srv.Seed(1)
	srv.Fail(apitest.OpStorageToken, "")

	model := NewDetailModel(svc, api.RowID(ids[0]), t.TempDir())
	msg := runCmd(t, model.Init())
	_, ok := msg.(errMsg)
	require.True(t, ok, "got %T", msg)

	model, _ = model.Update(msg)
	assert.Nil(t, model.detail)
	assert.Contains(t, model.View(), "Please wait")
}

func TestDetailIgnoresStaleRecord(t *testing.T) {
	_, svc := testService(t)
	model := NewDetailModel(svc, "a", t.TempDir())

	model, _ = model.Update(detailLoadedMsg{detail: &records.Detail{Record: api.Record{ID: "b"}}})
	assert.Nil(t, model.detail)
}

func TestDetailDownloadWritesFile(t *testing.T) {
	_, svc := testService(t)
	rec := createRecord(t, svc, map[int]*records.Upload{
		2: records.FromBytes("chart.png", []byte("png bytes")),
	})
	dir := t.TempDir()

	model := NewDetailModel(svc, rec.ID, dir)
	model, _ = model.Update(runCmd(t, model.Init()))

	_, cmd := model.Update(runeKey('1'))
	assert.Nil(t, cmd, "empty slot has nothing to download")

	_, cmd = model.Update(runeKey('2'))
	msg := runCmd(t, cmd)
	done, ok := msg.(downloadedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, filepath.Join(dir, "chart.png"), done.path)

	b, err := os.ReadFile(done.path)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(b))
}

func TestDetailDownloadFailureKeepsExistingFile(t *testing.T) {
	srv, svc := testService(t)
	rec := createRecord(t, svc, map[int]*records.Upload{
		1: records.FromBytes("q1.pdf", []byte("%PDF")),
	})
	dir := t.TempDir()
	mine := filepath.Join(dir, "q1.pdf")
	require.NoError(t, os.WriteFile(mine, []byte("my own notes"), 0o600))

	model := NewDetailModel(svc, rec.ID, dir)
	model, _ = model.Update(runCmd(t, model.Init()))

	srv.Fail(apitest.OpDownload, "")
	_, cmd := model.Update(runeKey('1'))
	_, ok := runCmd(t, cmd).(errMsg)
	require.True(t, ok)

	b, err := os.ReadFile(mine)
	require.NoError(t, err)
	assert.Equal(t, "my own notes", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDetailDownloadPicksFreeName(t *testing.T) {
	_, svc := testService(t)
	rec := createRecord(t, svc, map[int]*records.Upload{
		1: records.FromBytes("q1.pdf", []byte("%PDF")),
	})
	dir := t.TempDir()
	mine := filepath.Join(dir, "q1.pdf")
	require.NoError(t, os.WriteFile(mine, []byte("my own notes"), 0o600))

	model := NewDetailModel(svc, rec.ID, dir)
	model, _ = model.Update(runCmd(t, model.Init()))

	_, cmd := model.Update(runeKey('1'))
	done, ok := runCmd(t, cmd).(downloadedMsg)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "q1 (1).pdf"), done.path)

	b, err := os.ReadFile(mine)
	require.NoError(t, err)
	assert.Equal(t, "my own notes", string(b))
	b, err = os.ReadFile(done.path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))
}

func TestDetailKeysNavigate(t *testing.T) {
	_, svc := testService(t)
	model := NewDetailModel(svc, "r1", t.TempDir())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, navigateMsg{to: pageList}, runCmd(t, cmd))

	_, cmd = model.Update(runeKey('u'))
	assert.Equal(t, navigateMsg{to: pageUpdate, id: "r1"}, runCmd(t, cmd))
}
