// Package transfer owns the discovery-and-transfer engine of one receive session.
//
// Ownership boundary:
// - discovery responder (one non-blocking datagram poll per call)
// - transfer listener (single accepted stream, assembly-buffer receive)
// - chunk writer (batched flush of the assembly buffer to the temp file)
// - finalizer (delete-then-rename of the temp file onto the final path)
//
// Every operation takes the Session by pointer and never blocks: channel
// bindings report ErrWouldBlock when nothing is ready and the caller tries
// again on the next tick. Any other error returned here is fatal for the
// session.
package transfer
