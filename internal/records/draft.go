package records

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/errs"
)

// --- Accept Policy ---

// Accept is the file type policy for attachment slots.
type Accept int

const (
	// AcceptAny allows every file type. Used on creation.
	AcceptAny Accept = iota
	// AcceptImages allows image files only. Used on update.
	AcceptImages
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg"}

// Allows reports whether a file with the given name passes the policy.
func (a Accept) Allows(name string) bool {
	if a == AcceptAny {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range imageExtensions {
		if ext == allowed {
			return true
		}
	}
	return strings.HasPrefix(mime.TypeByExtension(ext), "image/")
}

// Extensions lists the extensions a file picker should offer. Nil means all.
func (a Accept) Extensions() []string {
	if a == AcceptAny {
		return nil
	}
	return append([]string(nil), imageExtensions...)
}

// Pattern returns the HTML accept attribute value.
func (a Accept) Pattern() string {
	if a == AcceptImages {
		return "image/*"
	}
	return "*"
}

// --- Uploads ---

// Upload is a named file selected for one attachment slot. Content is opened
// only when the upload runs.
type Upload struct {
	Name string
	open func() (io.ReadCloser, error)
}

// FromPath selects a file on disk.
func FromPath(path string) *Upload {
	return &Upload{
		Name: filepath.Base(path),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FromBytes selects in-memory content under the given name.
func FromBytes(name string, content []byte) *Upload {
	return &Upload{
		Name: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// Open returns the upload content.
func (u *Upload) Open() (io.ReadCloser, error) {
	if u == nil || u.open == nil {
		return nil, fmt.Errorf("open upload: no content")
	}
	return u.open()
}

// --- Draft ---

// Draft is the submitted state of a record form.
type Draft struct {
	Title       string
	Description string
	Files       [api.SlotCount]*Upload
}

// SetFile selects an upload for a 1-based slot.
func (d *Draft) SetFile(slot int, u *Upload) {
	if slot < 1 || slot > api.SlotCount {
		return
	}
	d.Files[slot-1] = u
}

// File returns the upload selected for a 1-based slot, if any.
func (d Draft) File(slot int) *Upload {
	if slot < 1 || slot > api.SlotCount {
		return nil
	}
	return d.Files[slot-1]
}

func (d Draft) input() api.RecordInput {
	return api.RecordInput{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
	}
}

// FieldError is one failed form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every failed field of a draft.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return fmt.Sprintf("%s: %s", errs.ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return errs.ErrValidation
}

// Message returns the failure message for one field, or "".
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Validate checks required fields and the attachment policy.
func (d Draft) Validate(accept Accept) error {
	var fields []FieldError
	if strings.TrimSpace(d.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "Title is required"})
	}
	if strings.TrimSpace(d.Description) == "" {
		fields = append(fields, FieldError{Field: "description", Message: "Description is required"})
	}
	for i, u := range d.Files {
		if u == nil {
			continue
		}
		column := api.SlotColumn(i + 1)
		if !accept.Allows(u.Name) {
			fields = append(fields, FieldError{
				Field:   column,
				Message: fmt.Sprintf("File %d: only image files are accepted", i+1),
			})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
