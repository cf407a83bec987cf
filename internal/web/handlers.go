package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/errs"
	"github.com/gravitrone/datafiles/internal/records"
)

const (
	maxUploadMemory = 32 << 20
	maxRequestBytes = 100 << 20
	flashCookie     = "datafiles_flash"

	flashCreated = "created"
	flashUpdated = "updated"
)

type flash struct {
	Level string
	Title string
	Text  string
}

var failureFlash = &flash{
	Level: "error",
	Title: records.FailureTitle,
	Text:  records.FailureDescription,
}

type recordRow struct {
	ID          string
	Title       string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

type listPage struct {
	Heading string
	Flash   *flash
	Records []recordRow
}

type slotField struct {
	Slot     int
	Column   string
	Current  string
	Present  bool
	Filename string
	URL      string
}

type formPage struct {
	Heading                string
	Flash                  *flash
	Action                 string
	Title                  string
	Description            string
	TitlePlaceholder       string
	DescriptionPlaceholder string
	Accept                 string
	Slots                  []slotField
	Errors                 map[string]string
}

type detailPage struct {
	Heading   string
	Flash     *flash
	Record    api.Record
	CreatedAt string
	UpdatedAt string
	Slots     []slotField
}

// --- Listing ---

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page := listPage{Heading: "Records", Flash: s.takeFlash(w, r)}

	rows, err := s.svc.List(r.Context())
	if err != nil {
		page.Flash = failureFlash
		s.render(w, http.StatusBadGateway, "list", page)
		return
	}
	page.Records = make([]recordRow, 0, len(rows))
	for _, rec := range rows {
		page.Records = append(page.Records, recordRow{
			ID:          rec.ID.String(),
			Title:       rec.Title,
			Description: rec.Description,
			CreatedAt:   records.FormatTimestamp(rec.CreatedAt),
			UpdatedAt:   records.FormatTimestamp(rec.UpdatedAt),
		})
	}
	s.render(w, http.StatusOK, "list", page)
}

// --- Creation ---

func newCreatePage() formPage {
	return formPage{
		Heading:                "Create",
		Action:                 "/create",
		TitlePlaceholder:       "Enter title",
		DescriptionPlaceholder: "Enter description",
		Accept:                 records.AcceptAny.Pattern(),
		Slots:                  emptySlots(),
	}
}

func (s *Server) handleCreateForm(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "form", newCreatePage())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	page := newCreatePage()
	draft, err := s.readDraft(w, r)
	if err != nil {
		s.logger.Warn("read create form", zap.Error(err))
		page.Flash = failureFlash
		s.render(w, formReadStatus(err), "form", page)
		return
	}
	page.Title, page.Description = draft.Title, draft.Description

	if _, err := s.svc.Create(r.Context(), draft); err != nil {
		s.renderFormError(w, page, err)
		return
	}
	s.redirectWithFlash(w, r, flashCreated)
}

// --- Detail ---

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := api.RowID(chi.URLParam(r, "id"))
	detail, err := s.svc.Detail(r.Context(), id)
	if err != nil {
		s.renderFailure(w, err)
		return
	}

	page := detailPage{
		Heading:   "Detail #" + id.String(),
		Record:    detail.Record,
		CreatedAt: records.FormatTimestamp(detail.Record.CreatedAt),
		UpdatedAt: records.FormatTimestamp(detail.Record.UpdatedAt),
		Slots:     emptySlots(),
	}
	for i := range page.Slots {
		if dl, ok := detail.Download(i + 1); ok {
			page.Slots[i].Present = true
			page.Slots[i].Filename = dl.Filename
			page.Slots[i].URL = dl.URL
		}
	}
	s.render(w, http.StatusOK, "detail", page)
}

// handleDownload redirects to a freshly authorized link for one attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := api.RowID(chi.URLParam(r, "id"))
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || slot < 1 || slot > api.SlotCount {
		http.NotFound(w, r)
		return
	}
	detail, err := s.svc.Detail(r.Context(), id)
	if err != nil {
		s.renderFailure(w, err)
		return
	}
	dl, ok := detail.Download(slot)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, dl.URL, http.StatusFound)
}

// --- Update ---

func newUpdatePage(id api.RowID) formPage {
	return formPage{
		Heading:                "Update #" + id.String(),
		Action:                 "/update/" + id.String(),
		TitlePlaceholder:       "Enter product title",
		DescriptionPlaceholder: "Enter product description",
		Accept:                 records.AcceptImages.Pattern(),
		Slots:                  emptySlots(),
	}
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id := api.RowID(chi.URLParam(r, "id"))
	rec, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.renderFailure(w, err)
		return
	}
	page := newUpdatePage(id)
	page.Title, page.Description = rec.Title, rec.Description
	fillCurrent(page.Slots, rec)
	s.render(w, http.StatusOK, "form", page)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := api.RowID(chi.URLParam(r, "id"))
	page := newUpdatePage(id)
	draft, err := s.readDraft(w, r)
	if err != nil {
		s.logger.Warn("read update form", zap.String("record_id", id.String()), zap.Error(err))
		page.Flash = failureFlash
		s.render(w, formReadStatus(err), "form", page)
		return
	}
	page.Title, page.Description = draft.Title, draft.Description

	if _, err := s.svc.Update(r.Context(), id, draft); err != nil {
		s.renderFormError(w, page, err)
		return
	}
	s.redirectWithFlash(w, r, flashUpdated)
}

// --- Helpers ---

func emptySlots() []slotField {
	slots := make([]slotField, api.SlotCount)
	for i := range slots {
		slots[i] = slotField{Slot: i + 1, Column: api.SlotColumn(i + 1)}
	}
	return slots
}

func fillCurrent(slots []slotField, rec *api.Record) {
	for i := range slots {
		if f := rec.Attachment(i + 1); f != nil {
			slots[i].Current = f.Filename
		}
	}
}

// readDraft parses a multipart form of at most s.maxBody bytes. File inputs
// left empty are skipped.
func (s *Server) readDraft(w http.ResponseWriter, r *http.Request) (records.Draft, error) {
	var d records.Draft
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return d, err
	}
	d.Title = r.FormValue("title")
	d.Description = r.FormValue("description")

	for slot := 1; slot <= api.SlotCount; slot++ {
		file, header, err := r.FormFile(api.SlotColumn(slot))
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			return d, err
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return d, err
		}
		if header.Filename == "" {
			continue
		}
		d.SetFile(slot, records.FromBytes(header.Filename, content))
	}
	return d, nil
}

func formReadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (s *Server) renderFormError(w http.ResponseWriter, page formPage, err error) {
	var verr *records.ValidationError
	if errors.As(err, &verr) {
		page.Errors = map[string]string{}
		for _, f := range verr.Fields {
			page.Errors[f.Field] = f.Message
		}
		s.render(w, http.StatusUnprocessableEntity, "form", page)
		return
	}
	page.Flash = failureFlash
	s.render(w, http.StatusBadGateway, "form", page)
}

// renderFailure shows the listing page with the generic failure notice.
func (s *Server) renderFailure(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, errs.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.render(w, status, "list", listPage{Heading: "Records", Flash: failureFlash})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    kind,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// takeFlash reads and clears the one-shot notice set by a redirect.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	switch c.Value {
	case flashCreated:
		return &flash{Level: "success", Title: records.CreatedMessage}
	case flashUpdated:
		return &flash{Level: "success", Title: records.UpdatedMessage}
	}
	return nil
}
