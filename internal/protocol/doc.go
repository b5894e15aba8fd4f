// Package protocol owns the net boot wire contract.
//
// Ownership boundary:
// - discovery handshake tokens and prefix matching
// - shared port and payload limits for the transfer stream
//
// The transfer stream itself has no framing: raw ROM bytes until the
// sender closes, bounded by MaxPayloadBytes.
package protocol
