package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"freightsnap/internal/domain"
	"freightsnap/internal/pipeline"
	"freightsnap/internal/port"
)

// uploadQueueCap bounds how many files may wait for the session worker.
// Uploads beyond this are rejected rather than buffered without limit.
const uploadQueueCap = 64

// Processor turns one uploaded file into an extracted document. Satisfied
// by pipeline.Router; mocked in tests.
type Processor interface {
	ProcessUpload(ctx context.Context, fileName, mimeType string, data []byte, progress func(domain.FileStatus)) (*domain.ExtractedDocument, error)
}

// queueItem carries one upload through the session's FIFO queue. The raw
// payload is released once the item reaches the worker.
type queueItem struct {
	fileID   uuid.UUID
	name     string
	mimeType string
	data     []byte
	ctx      context.Context
}

// Session holds one browser session's accumulated document, its file
// list, and the FIFO extraction queue. A single worker goroutine drains
// the queue so results fold in upload order; all other access goes
// through methods that take the session mutex.
type Session struct {
	ID uuid.UUID

	processor Processor
	meter     port.UsageMeter

	mu       sync.Mutex
	agg      Aggregator
	files    []*domain.UploadedFile
	cancels  map[uuid.UUID]context.CancelFunc
	queue    chan queueItem
	pro      bool
	lastSeen time.Time
	closed   bool

	workerDone chan struct{}
}

func newSession(processor Processor, meter port.UsageMeter) *Session {
	s := &Session{
		ID:         uuid.New(),
		processor:  processor,
		meter:      meter,
		cancels:    make(map[uuid.UUID]context.CancelFunc),
		queue:      make(chan queueItem, uploadQueueCap),
		lastSeen:   time.Now(),
		workerDone: make(chan struct{}),
	}
	go s.runWorker()
	return s
}

// Enqueue registers an upload and queues it for extraction. Free-tier
// sessions are metered here, at acceptance, so a queue full of pending
// files cannot sidestep the daily cap.
func (s *Session) Enqueue(fileName, mimeType string, data []byte) (*domain.UploadedFile, error) {
	if _, ok := domain.DetectFileType(fileName, mimeType); !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrSessionNotFound
	}
	if !s.pro {
		if !s.meter.CanProcess() {
			return nil, domain.ErrDailyLimitReached
		}
	}

	file := &domain.UploadedFile{
		ID:     uuid.New(),
		Name:   fileName,
		Status: domain.FileStatusPending,
	}

	ctx, cancel := context.WithCancel(context.Background())
	item := queueItem{
		fileID:   file.ID,
		name:     fileName,
		mimeType: mimeType,
		data:     data,
		ctx:      ctx,
	}

	select {
	case s.queue <- item:
	default:
		cancel()
		return nil, domain.ErrUploadQueueFull
	}

	// Record only once the file is actually queued; a full-queue
	// rejection must not consume a free-tier credit.
	if !s.pro {
		s.meter.Record()
	}

	s.files = append(s.files, file)
	s.cancels[file.ID] = cancel
	s.lastSeen = time.Now()
	snapshot := *file
	return &snapshot, nil
}

// RemoveFile takes a file out of the session. A queued or in-flight
// extraction is canceled; rows the file already contributed stay in the
// accumulated document, where the client can still delete them row by
// row.
func (s *Session) RemoveFile(fileID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, f := range s.files {
		if f.ID == fileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrFileNotFound
	}

	if cancel, ok := s.cancels[fileID]; ok {
		cancel()
		delete(s.cancels, fileID)
	}
	s.files = append(s.files[:idx], s.files[idx+1:]...)
	return nil
}

// Snapshot returns a deep copy of the accumulated document (nil when no
// file has completed yet) and the current file list.
func (s *Session) Snapshot() (*domain.ExtractedDocument, []domain.UploadedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]domain.UploadedFile, len(s.files))
	for i, f := range s.files {
		files[i] = *f
	}
	return s.agg.Document(), files
}

// EditCell applies a cell edit to the accumulated document.
func (s *Session) EditCell(rowIdx int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.EditCell(rowIdx, field, value)
}

// DeleteRow removes one accumulated row by position.
func (s *Session) DeleteRow(rowIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.DeleteRow(rowIdx)
}

// Clear drops the accumulated document and the file list, canceling any
// queued or in-flight extraction. The session itself stays usable.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.files = nil
	s.agg.Clear()
}

// SetPro marks the session as licensed; Pro sessions skip the free-tier
// meter and unlock the accounting export layouts.
func (s *Session) SetPro(pro bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pro = pro
}

// Pro reports whether the session holds an activated license.
func (s *Session) Pro() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pro
}

// Document returns a deep copy of the accumulated document, or nil.
func (s *Session) Document() *domain.ExtractedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Document()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) expired(ttl time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}

// close stops the worker and cancels everything outstanding. Idempotent.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	close(s.queue)
	s.mu.Unlock()

	<-s.workerDone
}

// runWorker drains the FIFO queue one item at a time, so documents fold
// into the aggregate strictly in upload order.
func (s *Session) runWorker() {
	defer close(s.workerDone)
	for item := range s.queue {
		s.process(item)
	}
}

func (s *Session) process(item queueItem) {
	// Removed while still queued: drop the payload silently.
	if item.ctx.Err() != nil {
		return
	}

	s.setStatus(item.fileID, domain.FileStatusReading, "")

	doc, err := s.processor.ProcessUpload(item.ctx, item.name, item.mimeType, item.data, func(st domain.FileStatus) {
		s.setStatus(item.fileID, st, "")
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, item.fileID)

	file := s.lookupLocked(item.fileID)
	if file == nil || item.ctx.Err() != nil {
		// Removed mid-flight: a late result must not leak into the
		// accumulated document.
		return
	}

	if err != nil {
		file.Status = domain.FileStatusError
		file.ErrorMessage = pipeline.UserMessage(err)
		log.Printf("session: file %s (%s) failed: %v", file.ID, file.Name, err)
		return
	}

	s.agg.Merge(doc)
	file.Status = domain.FileStatusDone
	file.RowCount = len(doc.Rows)
}

func (s *Session) setStatus(fileID uuid.UUID, status domain.FileStatus, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if file := s.lookupLocked(fileID); file != nil && !file.Status.Terminal() {
		file.Status = status
		file.ErrorMessage = msg
	}
}

func (s *Session) lookupLocked(fileID uuid.UUID) *domain.UploadedFile {
	for _, f := range s.files {
		if f.ID == fileID {
			return f
		}
	}
	return nil
}
