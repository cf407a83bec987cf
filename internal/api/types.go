package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SlotCount is the number of fixed attachment slots on a record.
const SlotCount = 3

// SlotColumn returns the column (and multipart field) name of a 1-based slot.
func SlotColumn(slot int) string {
	return fmt.Sprintf("file_%d", slot)
}

// --- Row ID ---

// RowID is the opaque identifier the engine assigns to a row. Some engines
// return numeric ids, so decoding accepts both JSON strings and numbers.
type RowID string

func (id *RowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("row id: %w", err)
	}
	*id = RowID(n.String())
	return nil
}

func (id RowID) String() string {
	return string(id)
}

// --- Attachments ---

// FileObject is the attachment metadata stored in a slot column.
type FileObject struct {
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url"`
	MimeType string `json:"mimetype,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// UnmarshalJSON accepts the object form and the bare URL string form.
func (f *FileObject) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*f = FileObject{URL: url}
		return nil
	}
	type plain FileObject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("file object: %w", err)
	}
	*f = FileObject(p)
	return nil
}

// Present reports whether the slot holds an uploaded file.
func (f *FileObject) Present() bool {
	return f != nil && f.URL != ""
}

// --- Record ---

// Record is one row of the records table.
type Record struct {
	ID          RowID       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	File1       *FileObject `json:"file_1,omitempty"`
	File2       *FileObject `json:"file_2,omitempty"`
	File3       *FileObject `json:"file_3,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Attachment returns the file in a 1-based slot, or nil when the slot is empty.
func (r Record) Attachment(slot int) *FileObject {
	var f *FileObject
	switch slot {
	case 1:
		f = r.File1
	case 2:
		f = r.File2
	case 3:
		f = r.File3
	}
	if !f.Present() {
		return nil
	}
	return f
}

// RecordInput carries the editable metadata of a record.
type RecordInput struct {
	Title       string
	Description string
}

func (in RecordInput) fields() map[string]any {
	return map[string]any{
		"title":       in.Title,
		"description": in.Description,
	}
}
