package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/askhat/filesync/internal/connection"
	"github.com/askhat/filesync/internal/queue"
	"github.com/askhat/filesync/internal/remote"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestProcessSuccessCreatesRecord(t *testing.T) {
	conns := &fakeConnections{connections: map[string]connection.Connection{
		"acc1": {ID: uuid.New(), CustomerID: "cust-1", AccountID: "acc1", ConnectorType: "google_drive"},
	}}
	remotes := &fakeRemoteFactory{client: &fakeRemoteClient{content: "hello bytes"}}
	blobs := &fakeBlobStore{}
	records := newFakeRecords()
	failures := newFakeFailureStore()

	consumer := newTestConsumer(conns, remotes, blobs, records, failures)

	msg := syncMessage("acc1", "f1", "image/png", 100)
	if err := consumer.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if len(records.created) != 1 {
		t.Fatalf("expected one file record, got %d", len(records.created))
	}
	rec := records.created[0]
	if rec.StorageKey != blobs.lastKey {
		t.Fatalf("record storage key %q does not match blob write key %q", rec.StorageKey, blobs.lastKey)
	}
	if !strings.HasPrefix(rec.StorageKey, "uploads/") || !strings.HasSuffix(rec.StorageKey, "/file.png") {
		t.Fatalf("unexpected storage key shape: %q", rec.StorageKey)
	}
	if rec.CustomerID != "cust-1" {
		t.Fatalf("expected owner taken from connection, got %q", rec.CustomerID)
	}
	if rec.UploadedAt.IsZero() {
		t.Fatalf("expected record stamped with transfer time")
	}
	if blobs.lastBody != "hello bytes" {
		t.Fatalf("expected streamed content stored, got %q", blobs.lastBody)
	}
	if len(failures.records) != 0 {
		t.Fatalf("expected no failure records on success, got %d", len(failures.records))
	}
}

func TestProcessMissingConnectionRecordsFailure(t *testing.T) {
	conns := &fakeConnections{}
	remotes := &fakeRemoteFactory{client: &fakeRemoteClient{}}
	blobs := &fakeBlobStore{}
	records := newFakeRecords()
	failures := newFakeFailureStore()

	consumer := newTestConsumer(conns, remotes, blobs, records, failures)

	err := consumer.Process(context.Background(), syncMessage("ghost", "f1", "image/png", 0))
	if err == nil {
		t.Fatalf("expected missing connection to surface as an error")
	}
	if len(failures.records) != 1 {
		t.Fatalf("expected one failure record, got %d", len(failures.records))
	}
	if failures.records[0].Reason != "no connection found for account" {
		t.Fatalf("unexpected failure reason: %q", failures.records[0].Reason)
	}
}

func TestProcessDeduplicatesRepeatedFailures(t *testing.T) {
	conns := &fakeConnections{connections: map[string]connection.Connection{
		"acc1": {ID: uuid.New(), CustomerID: "cust-1", AccountID: "acc1"},
	}}
	remotes := &fakeRemoteFactory{client: &fakeRemoteClient{openErr: errors.New("timeout")}}
	blobs := &fakeBlobStore{}
	records := newFakeRecords()
	failures := newFakeFailureStore()

	consumer := newTestConsumer(conns, remotes, blobs, records, failures)

	msg := syncMessage("acc1", "f1", "image/png", 0)
	for i := 0; i < 2; i++ {
		if err := consumer.Process(context.Background(), msg); err == nil {
			t.Fatalf("expected download failure to surface")
		}
	}
	if len(failures.records) != 1 {
		t.Fatalf("expected consecutive identical failures to share one record, got %d", len(failures.records))
	}
	if failures.records[0].Reason != "timeout" {
		t.Fatalf("unexpected failure reason: %q", failures.records[0].Reason)
	}

	remotes.client.openErr = errors.New("connection reset")
	if err := consumer.Process(context.Background(), msg); err == nil {
		t.Fatalf("expected download failure to surface")
	}
	if len(failures.records) != 2 {
		t.Fatalf("expected a new record for a new reason, got %d", len(failures.records))
	}
	if failures.records[1].Reason != "connection reset" {
		t.Fatalf("unexpected second reason: %q", failures.records[1].Reason)
	}
}

func TestProcessStorageFailureTearsDownStream(t *testing.T) {
	stream := &trackedStream{Reader: strings.NewReader("partial content")}
	conns := &fakeConnections{connections: map[string]connection.Connection{
		"acc1": {ID: uuid.New(), CustomerID: "cust-1", AccountID: "acc1"},
	}}
	remotes := &fakeRemoteFactory{client: &fakeRemoteClient{stream: stream}}
	blobs := &fakeBlobStore{writeErr: errors.New("disk full")}
	records := newFakeRecords()
	failures := newFakeFailureStore()

	consumer := newTestConsumer(conns, remotes, blobs, records, failures)

	err := consumer.Process(context.Background(), syncMessage("acc1", "f1", "text/plain", 0))
	if err == nil {
		t.Fatalf("expected storage failure to surface")
	}
	if !stream.closed {
		t.Fatalf("expected the remote stream to be closed on storage failure")
	}
	if len(records.created) != 0 {
		t.Fatalf("expected no file record after a failed write")
	}
	if len(failures.records) != 1 || failures.records[0].Reason != "disk full" {
		t.Fatalf("expected one failure record with the storage reason, got %+v", failures.records)
	}
}

func TestProcessSinkStoppingEarlyDoesNotHang(t *testing.T) {
	// The declared size only advises the sink, so a sink may finish
	// before reading the stream to EOF. The transfer must still complete
	// instead of waiting on the undrained pipe forever.
	stream := &trackedStream{Reader: strings.NewReader(strings.Repeat("x", 256<<10))}
	conns := &fakeConnections{connections: map[string]connection.Connection{
		"acc1": {ID: uuid.New(), CustomerID: "cust-1", AccountID: "acc1"},
	}}
	remotes := &fakeRemoteFactory{client: &fakeRemoteClient{stream: stream}}
	blobs := &fakeBlobStore{readLimit: 10}
	records := newFakeRecords()
	failures := newFakeFailureStore()

	consumer := newTestConsumer(conns, remotes, blobs, records, failures)

	done := make(chan error, 1)
	go func() {
		done <- consumer.Process(context.Background(), syncMessage("acc1", "f1", "text/plain", 10))
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Process returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Process did not finish after the sink stopped reading")
	}

	if !stream.closed {
		t.Fatalf("expected the remote stream closed after the transfer")
	}
	if len(records.created) != 1 {
		t.Fatalf("expected one file record, got %d", len(records.created))
	}
	if len(failures.records) != 0 {
		t.Fatalf("expected no failure records, got %d", len(failures.records))
	}
}

func TestProcessLedgerErrorDoesNotMaskOriginalFailure(t *testing.T) {
	conns := &fakeConnections{}
	remotes := &fakeRemoteFactory{client: &fakeRemoteClient{}}
	blobs := &fakeBlobStore{}
	records := newFakeRecords()
	failures := newFakeFailureStore()
	failures.saveErr = errors.New("ledger down")

	consumer := newTestConsumer(conns, remotes, blobs, records, failures)

	err := consumer.Process(context.Background(), syncMessage("ghost", "f1", "image/png", 0))
	if err == nil {
		t.Fatalf("expected the original failure to surface")
	}
	if !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected the original cause preserved, got: %v", err)
	}
}

// --- helpers & fakes ---

func newTestConsumer(conns *fakeConnections, remotes *fakeRemoteFactory, blobs *fakeBlobStore, records *fakeRecords, failures *fakeFailureStore) *Consumer {
	log := zap.NewNop()
	return NewConsumer(conns, remotes, blobs, records, NewLedger(failures, log), log)
}

func syncMessage(accountID, fileID, mimeType string, size int64) queue.SyncMessage {
	return queue.SyncMessage{
		AccountID:    accountID,
		FileID:       fileID,
		RemoteURL:    "https://remote/" + fileID,
		DeclaredSize: size,
		Metadata: queue.FileMetadata{
			OriginalName: fileID + ".dat",
			MimeType:     mimeType,
			Size:         size,
		},
		Timestamp: time.Now().UTC(),
	}
}

type fakeConnections struct {
	connections map[string]connection.Connection
}

func (f *fakeConnections) FindByAccountID(ctx context.Context, accountID string) (connection.Connection, error) {
	conn, ok := f.connections[accountID]
	if !ok {
		return connection.Connection{}, connection.ErrConnectionNotFound
	}
	return conn, nil
}

type fakeRemoteFactory struct {
	client *fakeRemoteClient
}

func (f *fakeRemoteFactory) ForConnection(conn connection.Connection) (remote.Client, error) {
	return f.client, nil
}

type fakeRemoteClient struct {
	content string
	openErr error
	stream  io.ReadCloser
}

func (f *fakeRemoteClient) OpenDownload(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.stream != nil {
		return f.stream, nil
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeRemoteClient) ListFilesSince(ctx context.Context, since *time.Time) ([]remote.File, error) {
	return nil, nil
}

type trackedStream struct {
	io.Reader
	closed bool
}

func (s *trackedStream) Close() error {
	s.closed = true
	return nil
}

type fakeBlobStore struct {
	lastKey   string
	lastBody  string
	writeErr  error
	readLimit int64
}

func (f *fakeBlobStore) WriteStream(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.lastKey = key
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.readLimit > 0 {
		r = io.LimitReader(r, f.readLimit)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.lastBody = buf.String()
	return nil
}

type fakeRecords struct {
	created []Record
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{}
}

func (f *fakeRecords) Create(ctx context.Context, rec Record) (Record, error) {
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.created = append(f.created, rec)
	return rec, nil
}

type fakeFailureStore struct {
	records []FailedSync
	saveErr error
}

func newFakeFailureStore() *fakeFailureStore {
	return &fakeFailureStore{}
}

func (f *fakeFailureStore) Save(ctx context.Context, fs FailedSync) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, fs)
	return nil
}

func (f *fakeFailureStore) LatestByFileID(ctx context.Context, fileID string) (FailedSync, error) {
	var latest *FailedSync
	for i := range f.records {
		if f.records[i].FileID != fileID {
			continue
		}
		if latest == nil || f.records[i].AttemptedAt.After(latest.AttemptedAt) {
			latest = &f.records[i]
		}
	}
	if latest == nil {
		return FailedSync{}, ErrNoFailedSyncs
	}
	return *latest, nil
}
