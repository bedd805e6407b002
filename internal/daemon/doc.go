// Package daemon coordinates the long-running labelspool process.
//
// It wires configuration, the state store, and the polling agent into a
// single lifecycle with flock-based locking to prevent multiple instances,
// and exposes the HTTP status API. Keep orchestration logic here: scheduling
// decisions live in the agent while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
