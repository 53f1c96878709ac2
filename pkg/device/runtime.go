// Package device implements the control channel to a switch runtime.
//
// Each switch runtime exposes its match-action tables and registers through a
// small per-switch Redis instance (the testbed harness mirrors them there, the
// same way SONiC switches expose CONFIG_DB). Table entries live as hashes
// under "TABLE|<table>|<match>", register cells as fields of "REG|<name>".
package device

import "context"

// RuntimeClient is the typed command interface to one switch runtime.
// Every command returns an explicit result; callers decide whether a failure
// aborts (table programming) or degrades (counter monitoring).
type RuntimeClient interface {
	// ClearTable removes every entry from the named table.
	ClearTable(ctx context.Context, table string) error

	// AddEntry installs one table entry: match fields select the entry,
	// the action and its parameters describe what the data plane does.
	AddEntry(ctx context.Context, table, action string, match, params []string) error

	// WriteRegister sets one register cell.
	WriteRegister(ctx context.Context, name string, index int, value uint64) error

	// ReadRegister reads one register cell. An absent cell reads as zero.
	// A malformed stored value also reads as zero but returns an error so
	// the caller can mark the reading stale instead of trusting it.
	ReadRegister(ctx context.Context, name string, index int) (uint64, error)

	// ResetRegister zeroes every cell of the named register.
	ResetRegister(ctx context.Context, name string) error

	// Close releases the connection.
	Close() error
}
