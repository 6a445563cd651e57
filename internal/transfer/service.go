package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/askhat/filesync/internal/connection"
	"github.com/askhat/filesync/internal/metrics"
	"github.com/askhat/filesync/internal/queue"
	"github.com/askhat/filesync/internal/remote"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type connectionStore interface {
	FindByAccountID(ctx context.Context, accountID string) (connection.Connection, error)
}

type remoteFactory interface {
	ForConnection(conn connection.Connection) (remote.Client, error)
}

type blobStore interface {
	WriteStream(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

type recordStore interface {
	Create(ctx context.Context, rec Record) (Record, error)
}

// Consumer drains sync messages: it streams the remote file into the blob
// store and commits a file record, or books the failure into the ledger.
type Consumer struct {
	connections connectionStore
	remotes     remoteFactory
	blobs       blobStore
	records     recordStore
	ledger      *Ledger
	log         *zap.Logger
}

// NewConsumer constructs a download consumer.
func NewConsumer(connections connectionStore, remotes remoteFactory, blobs blobStore, records recordStore, ledger *Ledger, log *zap.Logger) *Consumer {
	return &Consumer{
		connections: connections,
		remotes:     remotes,
		blobs:       blobs,
		records:     records,
		ledger:      ledger,
		log:         log,
	}
}

// Process handles one delivery. The message may be redelivered; duplicate
// successful processing of the same file is tolerated, only failures are
// deduplicated. Any error is surfaced after ledger bookkeeping so the queue
// applies its redelivery policy.
func (c *Consumer) Process(ctx context.Context, msg queue.SyncMessage) error {
	conn, err := c.connections.FindByAccountID(ctx, msg.AccountID)
	if err != nil {
		if errors.Is(err, connection.ErrConnectionNotFound) {
			return c.fail(ctx, msg, ErrNoConnection)
		}
		return c.fail(ctx, msg, err)
	}

	client, err := c.remotes.ForConnection(conn)
	if err != nil {
		return c.fail(ctx, msg, err)
	}

	key := StorageKey(msg.Metadata.MimeType)

	stream, err := client.OpenDownload(ctx, msg.FileID)
	if err != nil {
		return c.fail(ctx, msg, err)
	}

	if err := c.streamToBlob(ctx, key, stream, msg); err != nil {
		return c.fail(ctx, msg, err)
	}

	rec := Record{
		ID:           uuid.New(),
		OriginalName: msg.Metadata.OriginalName,
		MimeType:     msg.Metadata.MimeType,
		Size:         msg.Metadata.Size,
		StorageKey:   key,
		CustomerID:   conn.CustomerID,
		RemoteFileID: msg.FileID,
		AccountID:    msg.AccountID,
		UploadedAt:   time.Now().UTC(),
	}
	if _, err := c.records.Create(ctx, rec); err != nil {
		return c.fail(ctx, msg, err)
	}

	metrics.TransfersSucceeded.Inc()
	c.log.Info("file transferred",
		zap.String("file_id", msg.FileID),
		zap.String("account_id", msg.AccountID),
		zap.String("storage_key", key),
	)
	return nil
}

// streamToBlob pumps the remote stream through a pipe into the blob store.
// A sink error aborts the pipe, which unblocks the pump; closing the remote
// stream then actively cancels the upstream read.
func (c *Consumer) streamToBlob(ctx context.Context, key string, stream io.ReadCloser, msg queue.SyncMessage) error {
	pipe := NewStreamPipe()

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		if _, err := io.Copy(pipe, stream); err != nil {
			pipe.Fail(err)
			return
		}
		pipe.Close()
	}()

	writeErr := c.blobs.WriteStream(ctx, key, pipe.Reader(), msg.DeclaredSize, msg.Metadata.MimeType)
	// Tear down the read side whether the sink succeeded or failed. The
	// declared size only advises the sink, so it may return before draining
	// the stream to EOF; a pump still blocked in Write must be released or
	// it would never finish.
	pipe.Abort(writeErr)
	stream.Close()
	<-pumpDone

	return writeErr
}

// fail runs the failure deduplication protocol and re-surfaces the original
// error. Ledger bookkeeping is a side effect, never a gate.
func (c *Consumer) fail(ctx context.Context, msg queue.SyncMessage, cause error) error {
	reason := rootCause(cause)
	if err := c.ledger.Record(ctx, msg.FileID, msg.AccountID, reason); err != nil {
		c.log.Error("record failed sync",
			zap.String("file_id", msg.FileID),
			zap.Error(err),
		)
	}
	metrics.TransfersFailed.Inc()
	return fmt.Errorf("sync file %s: %w", msg.FileID, cause)
}

// rootCause unwraps to the innermost error so ledger reasons stay short and
// stable across wrapping layers.
func rootCause(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
