package transfer

import "errors"

var (
	// ErrWouldBlock is the normal outcome of a poll with nothing ready.
	ErrWouldBlock = errors.New("transfer: would block")

	ErrDiscoveryReceive = errors.New("transfer: could not receive from discovery channel")
	ErrDiscoveryReply   = errors.New("transfer: could not respond to discovery request")
	ErrAccept           = errors.New("transfer: could not accept transfer connection")
	ErrReceive          = errors.New("transfer: could not receive from transfer connection")
	ErrOpenTemp         = errors.New("transfer: could not open temp file for writing")
	ErrWrite            = errors.New("transfer: could not write to temp file")
	ErrShortWrite       = errors.New("transfer: could not write all bytes to temp file")
	ErrCloseTemp        = errors.New("transfer: could not close temp file")
	ErrFinalizeDelete   = errors.New("transfer: could not delete existing final file")
	ErrFinalizeRename   = errors.New("transfer: could not move temp file to final path")
)
