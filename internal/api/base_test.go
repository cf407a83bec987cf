package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotColumn(t *testing.T) {
	assert.Equal(t, "file_1", SlotColumn(1))
	assert.Equal(t, "file_3", SlotColumn(SlotCount))
}

func TestRowIDAcceptsStringsAndNumbers(t *testing.T) {
	var rec struct {
		ID RowID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"8f14e45f"}`), &rec))
	assert.Equal(t, RowID("8f14e45f"), rec.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":42}`), &rec))
	assert.Equal(t, "42", rec.ID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &rec))
	assert.Empty(t, rec.ID)

	require.Error(t, json.Unmarshal([]byte(`{"id":{}}`), &rec))
}

func TestFileObjectDecodesBothForms(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "r1",
		"title": "Report",
		"description": "Q1 results",
		"file_1": {"filename":"q1.pdf","url":"https://cdn.example.com/q1.pdf","mimetype":"application/pdf","size":10240},
		"file_2": "https://cdn.example.com/raw.png",
		"file_3": null,
		"created_at": "2024-03-05T09:07:00Z"
	}`), &rec))

	first := rec.Attachment(1)
	require.NotNil(t, first)
	assert.Equal(t, "q1.pdf", first.Filename)
	assert.Equal(t, "application/pdf", first.MimeType)
	assert.Equal(t, int64(10240), first.Size)

	second := rec.Attachment(2)
	require.NotNil(t, second)
	assert.Equal(t, "https://cdn.example.com/raw.png", second.URL)
	assert.Empty(t, second.Filename)

	assert.Nil(t, rec.Attachment(3))
	assert.Nil(t, rec.Attachment(4))
	assert.Equal(t, 2024, rec.CreatedAt.Year())
}

func TestAttachmentTreatsEmptyURLAsAbsent(t *testing.T) {
	rec := Record{File1: &FileObject{Filename: "ghost.txt"}}
	assert.Nil(t, rec.Attachment(1))
	assert.False(t, (*FileObject)(nil).Present())
}

func TestRecordInputFields(t *testing.T) {
	fields := RecordInput{Title: "Report", Description: "Q1 results"}.fields()
	assert.Equal(t, map[string]any{"title": "Report", "description": "Q1 results"}, fields)
}
