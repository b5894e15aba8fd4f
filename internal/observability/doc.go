// Package observability exposes receiver progress to operators.
//
// Ownership boundary:
// - prometheus collectors for discovery, receive, flush and session outcome
//
// - Recorder: a mutex-guarded status snapshot fed by receiver callbacks
//
// - StatusServer: optional gin HTTP surface for /health, /status and /metrics
//
// Nothing here drives the session; every hook is a passive observer.
package observability
