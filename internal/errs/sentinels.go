// Package errs contains sentinel errors shared by the api client, the record
// workflows and every surface that reports their failures.
package errs

import "errors"

// Error kinds for remote calls. The api layer wraps transport and HTTP failures
// with exactly one of these so callers can branch with errors.Is.
var (
	// ErrRemoteWrite indicates a rejected insert, update or delete.
	ErrRemoteWrite = errors.New("remote write failed")

	// ErrRemoteRead indicates a rejected select.
	ErrRemoteRead = errors.New("remote read failed")

	// ErrTokenRequest indicates the API refused to issue an upload or storage token.
	ErrTokenRequest = errors.New("token request failed")

	// ErrUpload indicates a file upload was rejected or failed in transit.
	ErrUpload = errors.New("upload failed")

	// ErrNotFound indicates no record matches the requested id.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a form failed local validation; no remote call was made.
	ErrValidation = errors.New("invalid input")
)
