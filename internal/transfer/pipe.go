package transfer

import "io"

// StreamPipe bridges the remote read side and the blob write side of a
// transfer. The producer ends the stream with Close or Fail; the consumer
// cancels with Abort, which propagates to the producer so a failing sink
// tears down the upstream read instead of leaving it dangling.
type StreamPipe struct {
	pr *io.PipeReader
	pw *io.PipeWriter
}

// NewStreamPipe constructs a connected pipe.
func NewStreamPipe() *StreamPipe {
	pr, pw := io.Pipe()
	return &StreamPipe{pr: pr, pw: pw}
}

// Write pushes bytes toward the reader, blocking until consumed or aborted.
func (p *StreamPipe) Write(b []byte) (int, error) {
	return p.pw.Write(b)
}

// Close signals a clean end of stream to the reader.
func (p *StreamPipe) Close() error {
	return p.pw.Close()
}

// Fail ends the stream with an error; the reader observes err.
func (p *StreamPipe) Fail(err error) {
	p.pw.CloseWithError(err)
}

// Abort cancels from the consuming side; blocked and future writes fail
// with err, or with io.ErrClosedPipe when err is nil.
func (p *StreamPipe) Abort(err error) {
	p.pr.CloseWithError(err)
}

// Reader returns the consuming end of the pipe.
func (p *StreamPipe) Reader() io.Reader {
	return p.pr
}
