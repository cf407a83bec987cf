// Package records implements the record workflows shared by the terminal UI,
// the browser front end and the CLI: listing, detail, creation with rollback,
// and update with background attachment uploads.
package records

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/errs"
)

// ListLimit caps how many records a listing fetches.
const ListLimit = 10000

// Remote is the subset of the engine API the workflows call. *api.Client
// implements it.
type Remote interface {
	ListRecords(ctx context.Context, table string, limit int) ([]api.Record, error)
	GetRecord(ctx context.Context, table string, id api.RowID) (*api.Record, error)
	InsertRecord(ctx context.Context, table string, input api.RecordInput) (*api.Record, error)
	UpdateRecord(ctx context.Context, table string, id api.RowID, input api.RecordInput) (*api.Record, error)
	DeleteRecord(ctx context.Context, table string, id api.RowID) error
	UploadToken(ctx context.Context, table string, id api.RowID, column string) (string, error)
	StorageToken(ctx context.Context) (string, error)
	UploadFile(ctx context.Context, token, field, filename string, content io.Reader) (*api.FileObject, error)
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Service runs record workflows against one table.
type Service struct {
	remote  Remote
	table   string
	logger  *zap.Logger
	uploads sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithTable selects the table records live in.
func WithTable(table string) Option {
	return func(s *Service) {
		if table != "" {
			s.table = table
		}
	}
}

// WithLogger sets the logger remote failures are written to.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service. Without options it targets api.DefaultTable and
// discards logs.
func New(remote Remote, opts ...Option) *Service {
	s := &Service{
		remote: remote,
		table:  api.DefaultTable,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("table", s.table))
	return s
}

// Table returns the table the service targets.
func (s *Service) Table() string {
	return s.table
}

// --- Reads ---

// List returns up to ListLimit records in API order.
func (s *Service) List(ctx context.Context) ([]api.Record, error) {
	rows, err := s.remote.ListRecords(ctx, s.table, ListLimit)
	if err != nil {
		s.logger.Error("list records", zap.Error(err))
		return nil, err
	}
	if len(rows) > ListLimit {
		rows = rows[:ListLimit]
	}
	return rows, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id api.RowID) (*api.Record, error) {
	rec, err := s.remote.GetRecord(ctx, s.table, id)
	if err != nil {
		s.logger.Error("get record", zap.String("record_id", id.String()), zap.Error(err))
		return nil, err
	}
	return rec, nil
}

// Detail fetches a record and a storage token concurrently.
func (s *Service) Detail(ctx context.Context, id api.RowID) (*Detail, error) {
	var (
		wg       sync.WaitGroup
		rec      *api.Record
		token    string
		recErr   error
		tokenErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rec, recErr = s.remote.GetRecord(ctx, s.table, id)
	}()
	go func() {
		defer wg.Done()
		token, tokenErr = s.remote.StorageToken(ctx)
	}()
	wg.Wait()

	if recErr != nil {
		s.logger.Error("load detail record", zap.String("record_id", id.String()), zap.Error(recErr))
		return nil, recErr
	}
	if tokenErr != nil {
		s.logger.Error("load storage token", zap.String("record_id", id.String()), zap.Error(tokenErr))
		return nil, tokenErr
	}
	return &Detail{Record: *rec, Token: token}, nil
}

// Fetch writes the attachment in a 1-based slot to w.
func (s *Service) Fetch(ctx context.Context, id api.RowID, slot int, w io.Writer) (Download, error) {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		return Download{}, err
	}
	dl, ok := detail.Download(slot)
	if !ok {
		return Download{}, fmt.Errorf("record %s slot %d: %w", id, slot, errs.ErrNotFound)
	}
	if _, err := s.remote.Download(ctx, dl.URL, w); err != nil {
		s.logger.Error("download attachment",
			zap.String("record_id", id.String()),
			zap.Int("slot", slot),
			zap.Error(err),
		)
		return Download{}, err
	}
	return dl, nil
}

// --- Writes ---

// Create inserts a record and uploads its attachments one slot at a time.
// When any upload step fails, the record is deleted on a best-effort basis
// and the upload error is returned.
func (s *Service) Create(ctx context.Context, d Draft) (*api.Record, error) {
	if err := d.Validate(AcceptAny); err != nil {
		workflowTotal.WithLabelValues(workflowCreate, outcomeRejected).Inc()
		return nil, err
	}

	rec, err := s.remote.InsertRecord(ctx, s.table, d.input())
	if err != nil {
		s.logger.Error("insert record", zap.Error(err))
		workflowTotal.WithLabelValues(workflowCreate, outcomeFailed).Inc()
		return nil, err
	}
	log := s.logger.With(zap.String("record_id", rec.ID.String()))

	for slot := 1; slot <= api.SlotCount; slot++ {
		u := d.File(slot)
		if u == nil {
			continue
		}
		if err := s.upload(ctx, rec.ID, slot, u); err != nil {
			uploadsTotal.WithLabelValues(workflowCreate, outcomeFailed).Inc()
			log.Error("upload attachment", zap.Int("slot", slot), zap.String("filename", u.Name), zap.Error(err))
			s.rollback(ctx, rec.ID)
			workflowTotal.WithLabelValues(workflowCreate, outcomeFailed).Inc()
			return nil, err
		}
		uploadsTotal.WithLabelValues(workflowCreate, outcomeOK).Inc()
	}

	workflowTotal.WithLabelValues(workflowCreate, outcomeOK).Inc()
	stored, err := s.remote.GetRecord(ctx, s.table, rec.ID)
	if err != nil {
		log.Warn("reload created record", zap.Error(err))
		return rec, nil
	}
	return stored, nil
}

// rollback deletes a partially created record. It runs even when ctx is
// already cancelled and is never retried.
func (s *Service) rollback(ctx context.Context, id api.RowID) {
	log := s.logger.With(zap.String("record_id", id.String()))
	if err := s.remote.DeleteRecord(context.WithoutCancel(ctx), s.table, id); err != nil {
		rollbacksTotal.WithLabelValues(outcomeFailed).Inc()
		log.Error("rollback created record", zap.Error(err))
		return
	}
	rollbacksTotal.WithLabelValues(outcomeOK).Inc()
	log.Info("rolled back created record")
}

// Update sets title and description, then uploads each selected attachment in
// its own goroutine. It returns once the metadata update succeeds; upload
// failures are only logged. Call Wait to block until uploads finish.
func (s *Service) Update(ctx context.Context, id api.RowID, d Draft) (*api.Record, error) {
	if err := d.Validate(AcceptImages); err != nil {
		workflowTotal.WithLabelValues(workflowUpdate, outcomeRejected).Inc()
		return nil, err
	}

	rec, err := s.remote.UpdateRecord(ctx, s.table, id, d.input())
	if err != nil {
		s.logger.Error("update record", zap.String("record_id", id.String()), zap.Error(err))
		workflowTotal.WithLabelValues(workflowUpdate, outcomeFailed).Inc()
		return nil, err
	}
	workflowTotal.WithLabelValues(workflowUpdate, outcomeOK).Inc()

	bg := context.WithoutCancel(ctx)
	for slot := 1; slot <= api.SlotCount; slot++ {
		u := d.File(slot)
		if u == nil {
			continue
		}
		s.uploads.Add(1)
		go func() {
			defer s.uploads.Done()
			if err := s.upload(bg, rec.ID, slot, u); err != nil {
				uploadsTotal.WithLabelValues(workflowUpdate, outcomeFailed).Inc()
				s.logger.Error("background upload",
					zap.String("record_id", rec.ID.String()),
					zap.Int("slot", slot),
					zap.String("filename", u.Name),
					zap.Error(err),
				)
				return
			}
			uploadsTotal.WithLabelValues(workflowUpdate, outcomeOK).Inc()
		}()
	}
	return rec, nil
}

// Wait blocks until every background upload started by Update has finished.
func (s *Service) Wait() {
	s.uploads.Wait()
}

func (s *Service) upload(ctx context.Context, id api.RowID, slot int, u *Upload) error {
	column := api.SlotColumn(slot)
	token, err := s.remote.UploadToken(ctx, s.table, id, column)
	if err != nil {
		return fmt.Errorf("slot %d: %w", slot, err)
	}
	content, err := u.Open()
	if err != nil {
		return fmt.Errorf("%w: slot %d: %w", errs.ErrUpload, slot, err)
	}
	defer content.Close()

	if _, err := s.remote.UploadFile(ctx, token, column, u.Name, content); err != nil {
		return fmt.Errorf("slot %d: %w", slot, err)
	}
	return nil
}
