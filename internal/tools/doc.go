// Package tools provides process helpers shared by platform adapters.
//
// Ownership boundary:
// - command execution with captured output
//
// - detached process start for the handoff reset
package tools
