package testutil

import (
	"context"
	"strings"
	"sync"
)

// FakeEntry is one installed table entry.
type FakeEntry struct {
	Action string
	Match  []string
	Params []string
}

// FakeRuntime is an in-memory RuntimeClient. It records every command in
// order and can be told to fail specific operations.
//
// Failure keys are "<op>:<name>", e.g. "add:ecmp_nhop", "clear:ipv4_lpm",
// "read:byte_counter", "write:load_threshold", "reset:byte_counter".
type FakeRuntime struct {
	mu        sync.Mutex
	Ops       []string
	Tables    map[string]map[string]FakeEntry // table -> match key -> entry
	Registers map[string]map[int]uint64
	FailOn    map[string]error
	closed    bool
}

// NewFakeRuntime creates an empty fake runtime.
func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{
		Tables:    make(map[string]map[string]FakeEntry),
		Registers: make(map[string]map[int]uint64),
		FailOn:    make(map[string]error),
	}
}

func (f *FakeRuntime) fail(op, name string) error {
	if err, ok := f.FailOn[op+":"+name]; ok {
		return err
	}
	return nil
}

func (f *FakeRuntime) ClearTable(_ context.Context, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ops = append(f.Ops, "clear "+table)
	if err := f.fail("clear", table); err != nil {
		return err
	}
	delete(f.Tables, table)
	return nil
}

func (f *FakeRuntime) AddEntry(_ context.Context, table, action string, match, params []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ops = append(f.Ops, "add "+table+" "+action+" "+strings.Join(match, ",")+" => "+strings.Join(params, ","))
	if err := f.fail("add", table); err != nil {
		return err
	}
	if f.Tables[table] == nil {
		f.Tables[table] = make(map[string]FakeEntry)
	}
	f.Tables[table][strings.Join(match, ",")] = FakeEntry{Action: action, Match: match, Params: params}
	return nil
}

func (f *FakeRuntime) WriteRegister(_ context.Context, name string, index int, value uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ops = append(f.Ops, "write "+name)
	if err := f.fail("write", name); err != nil {
		return err
	}
	if f.Registers[name] == nil {
		f.Registers[name] = make(map[int]uint64)
	}
	f.Registers[name][index] = value
	return nil
}

func (f *FakeRuntime) ReadRegister(_ context.Context, name string, index int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ops = append(f.Ops, "read "+name)
	if err := f.fail("read", name); err != nil {
		return 0, err
	}
	return f.Registers[name][index], nil
}

func (f *FakeRuntime) ResetRegister(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ops = append(f.Ops, "reset "+name)
	if err := f.fail("reset", name); err != nil {
		return err
	}
	delete(f.Registers, name)
	return nil
}

func (f *FakeRuntime) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeRuntime) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// SetRegister seeds a register cell.
func (f *FakeRuntime) SetRegister(name string, index int, value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Registers[name] == nil {
		f.Registers[name] = make(map[int]uint64)
	}
	f.Registers[name][index] = value
}

// Entry returns the installed entry for a match key, if present.
func (f *FakeRuntime) Entry(table, matchKey string) (FakeEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.Tables[table][matchKey]
	return e, ok
}

// EntryCount returns how many entries a table holds.
func (f *FakeRuntime) EntryCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Tables[table])
}

// OpLog returns a copy of the ordered command log.
func (f *FakeRuntime) OpLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Ops))
	copy(out, f.Ops)
	return out
}
