// Package receiver drives one net boot session from link wait to handoff.
//
// Ownership boundary:
// - the tick loop and the session state machine
//
// - opening and tearing down channels, buffers and the writer handle
//
// - finalize, linger, debug pause and the handoff decision
//
// - the fatal-error path: teardown, report, wait for acknowledgement
//
// Sockets, storage and key input are collaborators injected through Deps.
package receiver
