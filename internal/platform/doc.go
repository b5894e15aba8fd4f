// Package platform binds the receiver to the host it runs on.
//
// Ownership boundary:
// - link status and local address queries
//
// - key input polled once per tick
//
// - handoff: bounded image load into a staging region, then reset into it
//
// None of these types know about sessions or transfers.
package platform
