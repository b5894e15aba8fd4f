// Package transport binds the transfer channels to real sockets.
//
// Ownership boundary:
// - UDP discovery socket (ipv4 packet conn with interface control messages)
// - TCP transfer listener and accepted connection
// - would-block emulation: every call arms a short deadline and maps
//   os.ErrDeadlineExceeded to transfer.ErrWouldBlock
package transport
