// Package apitest runs an in-memory Qore engine for tests. It implements the
// execute, token, upload and download endpoints the client uses, issues
// JWT-scoped tokens, and can be told to fail individual operations.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gravitrone/datafiles/internal/api"
)

// Secret is the admin secret the server expects.
const Secret = "apitest-secret"

// Operation names recorded in the call log and accepted by Fail.
const (
	OpInsert       = api.OpInsert
	OpUpdate       = api.OpUpdate
	OpSelect       = api.OpSelect
	OpDelete       = api.OpDelete
	OpToken        = "Token"
	OpUpload       = "Upload"
	OpStorageToken = "StorageToken"
	OpDownload     = "Download"
)

// Call is one entry of the server's call log.
type Call struct {
	Op     string
	Column string
	RowID  string
}

type row struct {
	id          string
	title       string
	description string
	files       [api.SlotCount]*api.FileObject
	createdAt   time.Time
	updatedAt   time.Time
}

func (r *row) record() api.Record {
	rec := api.Record{
		ID:          api.RowID(r.id),
		Title:       r.title,
		Description: r.description,
		CreatedAt:   r.createdAt,
		UpdatedAt:   r.updatedAt,
	}
	rec.File1, rec.File2, rec.File3 = r.files[0], r.files[1], r.files[2]
	return rec
}

type tokenClaims struct {
	Table  string `json:"table,omitempty"`
	Row    string `json:"row,omitempty"`
	Column string `json:"column,omitempty"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// Server is a fake engine bound to an httptest.Server.
type Server struct {
	URL string

	srv        *httptest.Server
	signingKey []byte
	now        func() time.Time

	mu     sync.Mutex
	rows   []*row
	blobs  map[string][]byte
	calls  []Call
	faults map[string]bool
	hold   map[string]chan struct{}
}

// New starts a fake engine and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		signingKey: []byte(uuid.NewString()),
		now:        time.Now,
		blobs:      map[string][]byte{},
		faults:     map[string]bool{},
		hold:       map[string]chan struct{}{},
	}
	s.srv = httptest.NewServer(s.routes())
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// Client returns an api.Client pointed at the fake engine.
func (s *Server) Client() *api.Client {
	return api.NewClient(s.URL, Secret, 5*time.Second)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(s.requireSecret)
		r.Post("/v1/execute", s.handleExecute)
		r.Get("/v1/files/token/table/{table}/id/{id}/column/{column}", s.handleUploadToken)
		r.Post("/v1/storage/token", s.handleStorageToken)
	})
	r.Post("/v1/files/upload", s.handleUpload)
	r.Get("/v1/files/download/{table}/{id}/{column}/{filename}", s.handleDownload)
	return r
}

// --- Test Controls ---

// Fail makes every later call of op fail. For the token, upload and download
// ops, column limits the failure to one slot column; pass "" to fail all
// columns.
func (s *Server) Fail(op, column string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[faultKey(op, column)] = true
}

// Hold blocks every later upload to column until the returned func is called.
func (s *Server) Hold(column string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold[column] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Seed inserts n rows titled "Record <i>" and returns their ids in order.
func (s *Server) Seed(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		r := s.insertLocked(fmt.Sprintf("Record %d", i), fmt.Sprintf("Description %d", i))
		ids = append(ids, r.id)
	}
	return ids
}

// Records returns every stored row in insertion order.
func (s *Server) Records() []api.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Record, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r.record())
	}
	return out
}

// Record returns one stored row.
func (s *Server) Record(id string) (api.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findLocked(id)
	if r == nil {
		return api.Record{}, false
	}
	return r.record(), true
}

// Blob returns the stored bytes of one attachment.
func (s *Server) Blob(id, column string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[blobKey(id, column)]
	return b, ok
}

// Calls returns a copy of the call log.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsFor returns the logged calls of one operation.
func (s *Server) CallsFor(op string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// StorageToken issues a read token the same way the endpoint does.
func (s *Server) StorageToken() string {
	tok, _ := s.sign(tokenClaims{Access: "read"})
	return tok
}

// --- Handlers ---

func (s *Server) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(api.SecretHeader) != Secret {
			writeError(w, http.StatusUnauthorized, "invalid admin secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type executeRequest struct {
	Operations []api.Operation `json:"operations"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := map[string]any{}
	for _, op := range req.Operations {
		in := op.Instruction
		id := conditionID(in.Condition)
		s.calls = append(s.calls, Call{Op: op.Operation, RowID: id})
		if s.faults[faultKey(op.Operation, "")] {
			writeError(w, http.StatusInternalServerError, strings.ToLower(op.Operation)+" rejected")
			return
		}

		switch op.Operation {
		case api.OpSelect:
			results[in.Name] = s.selectLocked(id, in.Limit)
		case api.OpInsert:
			title, _ := in.Data["title"].(string)
			description, _ := in.Data["description"].(string)
			if title == "" || description == "" {
				writeError(w, http.StatusUnprocessableEntity, "title and description are required")
				return
			}
			results[in.Name] = []api.Record{s.insertLocked(title, description).record()}
		case api.OpUpdate:
			existing := s.findLocked(id)
			if existing == nil {
				results[in.Name] = []api.Record{}
				continue
			}
			if title, ok := in.Set["title"].(string); ok {
				existing.title = title
			}
			if description, ok := in.Set["description"].(string); ok {
				existing.description = description
			}
			existing.updatedAt = s.now()
			results[in.Name] = []api.Record{existing.record()}
		case api.OpDelete:
			results[in.Name] = s.deleteLocked(id)
		default:
			writeError(w, http.StatusBadRequest, "unknown operation "+op.Operation)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleUploadToken(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	id := chi.URLParam(r, "id")
	column := chi.URLParam(r, "column")

	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: OpToken, Column: column, RowID: id})
	failed := s.faults[faultKey(OpToken, column)] || s.faults[faultKey(OpToken, "")]
	exists := s.findLocked(id) != nil
	s.mu.Unlock()

	switch {
	case failed:
		writeError(w, http.StatusForbidden, "token denied")
		return
	case r.URL.Query().Get("access") != "write":
		writeError(w, http.StatusBadRequest, "access must be write")
		return
	case !exists:
		writeError(w, http.StatusNotFound, "row not found")
		return
	}

	tok, err := s.sign(tokenClaims{Table: table, Row: id, Column: column, Access: "write"})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) handleStorageToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: OpStorageToken})
	failed := s.faults[faultKey(OpStorageToken, "")]
	s.mu.Unlock()
	if failed {
		writeError(w, http.StatusForbidden, "storage token denied")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": s.StorageToken()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims, err := s.verify(r.URL.Query().Get("token"), "write")
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	file, header, err := r.FormFile(claims.Column)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form field "+claims.Column)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: OpUpload, Column: claims.Column, RowID: claims.Row})
	failed := s.faults[faultKey(OpUpload, claims.Column)] || s.faults[faultKey(OpUpload, "")]
	gate := s.hold[claims.Column]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if failed {
		writeError(w, http.StatusInternalServerError, "upload rejected")
		return
	}

	slot := slotForColumn(claims.Column)
	if slot == 0 {
		writeError(w, http.StatusBadRequest, "unknown column "+claims.Column)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.findLocked(claims.Row)
	if target == nil {
		writeError(w, http.StatusNotFound, "row not found")
		return
	}
	obj := &api.FileObject{
		Filename: header.Filename,
		URL: fmt.Sprintf("%s/v1/files/download/%s/%s/%s/%s", s.URL,
			url.PathEscape(claims.Table), url.PathEscape(claims.Row), claims.Column, url.PathEscape(header.Filename)),
		MimeType: header.Header.Get("Content-Type"),
		Size:     int64(len(content)),
	}
	target.files[slot-1] = obj
	target.updatedAt = s.now()
	s.blobs[blobKey(claims.Row, claims.Column)] = content
	writeJSON(w, http.StatusOK, obj)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.verify(r.URL.Query().Get("token"), "read"); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	column := chi.URLParam(r, "column")

	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: OpDownload, Column: column, RowID: id})
	failed := s.faults[faultKey(OpDownload, column)] || s.faults[faultKey(OpDownload, "")]
	content, ok := s.blobs[blobKey(id, column)]
	s.mu.Unlock()
	if failed {
		writeError(w, http.StatusInternalServerError, "download rejected")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

// --- Storage ---

func (s *Server) insertLocked(title, description string) *row {
	now := s.now()
	r := &row{
		id:          uuid.NewString(),
		title:       title,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}
	s.rows = append(s.rows, r)
	return r
}

func (s *Server) findLocked(id string) *row {
	for _, r := range s.rows {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (s *Server) selectLocked(id string, limit int) []api.Record {
	out := []api.Record{}
	for _, r := range s.rows {
		if id != "" && r.id != id {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, r.record())
	}
	return out
}

func (s *Server) deleteLocked(id string) int {
	kept := s.rows[:0]
	removed := 0
	for _, r := range s.rows {
		if r.id == id {
			removed++
			for slot := 1; slot <= api.SlotCount; slot++ {
				delete(s.blobs, blobKey(r.id, api.SlotColumn(slot)))
			}
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed
}

// --- Tokens ---

func (s *Server) sign(claims tokenClaims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(5 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func (s *Server) verify(raw, access string) (*tokenClaims, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing token")
	}
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Access != access {
		return nil, fmt.Errorf("token lacks %s access", access)
	}
	return claims, nil
}

// --- Helpers ---

func conditionID(cond *api.Condition) string {
	if cond == nil {
		return ""
	}
	for _, clause := range cond.And {
		if v, ok := clause["id"]; ok {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func slotForColumn(column string) int {
	for slot := 1; slot <= api.SlotCount; slot++ {
		if api.SlotColumn(slot) == column {
			return slot
		}
	}
	return 0
}

func faultKey(op, column string) string {
	return op + "/" + column
}

func blobKey(id, column string) string {
	return id + "/" + column
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
