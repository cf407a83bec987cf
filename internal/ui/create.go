package ui

import "github.com/gravitrone/datafiles/internal/records"

// NewCreateModel builds an empty creation form. Every file type is accepted.
func NewCreateModel(svc *records.Service, dir string) FormModel {
	return newFormModel(svc, formCreate, dir)
}
