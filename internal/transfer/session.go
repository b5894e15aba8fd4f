package transfer

import "github.com/google/uuid"

// Session is the single in-flight transfer context of a run.
type Session struct {
	ID    string
	State State

	// FileSize counts bytes received from the transfer connection.
	FileSize int64
	// BytesWritten counts bytes committed to the temp file.
	BytesWritten int64
	// BufferOffset is the fill level of the assembly buffer; bytes
	// [0, BufferOffset) are received but not yet flushed.
	BufferOffset int

	Completed       bool
	RebootRequested bool
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// DiscoverySatisfied reports whether payload bytes have started arriving,
// after which discovery is no longer polled.
func (s *Session) DiscoverySatisfied() bool {
	return s.FileSize > 0
}

// Pending is the number of received bytes not yet on storage.
func (s *Session) Pending() int64 {
	return s.FileSize - s.BytesWritten
}
