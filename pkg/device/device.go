package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowplane-net/flowplane/pkg/util"
)

// ConnectOptions selects how the runtime endpoint is reached.
// With SSHUser set, a tunnel is opened through the runtime host and the
// client dials the forwarded local port instead of the address directly.
type ConnectOptions struct {
	SSHUser string
	SSHPass string
}

// Device is one switch runtime with its connection lifecycle.
type Device struct {
	Name string

	client    *Client
	tunnel    *SSHTunnel
	connected bool
	mu        sync.Mutex
}

// Connect establishes the control channel to the switch runtime at addr.
func Connect(ctx context.Context, name, addr string, opts ConnectOptions) (*Device, error) {
	d := &Device{Name: name}

	dialAddr := addr
	if opts.SSHUser != "" {
		tun, err := NewSSHTunnel(addr, opts.SSHUser, opts.SSHPass)
		if err != nil {
			return nil, fmt.Errorf("SSH tunnel to %s: %w", name, err)
		}
		d.tunnel = tun
		dialAddr = tun.LocalAddr()
	}

	d.client = NewClient(dialAddr)
	if err := d.client.Connect(ctx); err != nil {
		if d.tunnel != nil {
			d.tunnel.Close()
		}
		return nil, fmt.Errorf("connecting to %s at %s: %w", name, addr, err)
	}

	d.connected = true
	util.WithSwitch(name).Debug("Connected")
	return d, nil
}

// Device delegates the RuntimeClient commands to its connection, so a
// connected Device can be used anywhere a RuntimeClient is expected.

func (d *Device) ClearTable(ctx context.Context, table string) error {
	return d.client.ClearTable(ctx, table)
}

func (d *Device) AddEntry(ctx context.Context, table, action string, match, params []string) error {
	return d.client.AddEntry(ctx, table, action, match, params)
}

func (d *Device) WriteRegister(ctx context.Context, name string, index int, value uint64) error {
	return d.client.WriteRegister(ctx, name, index, value)
}

func (d *Device) ReadRegister(ctx context.Context, name string, index int) (uint64, error) {
	return d.client.ReadRegister(ctx, name, index)
}

func (d *Device) ResetRegister(ctx context.Context, name string) error {
	return d.client.ResetRegister(ctx, name)
}

// Close disconnects the runtime channel and any tunnel behind it.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}
	d.connected = false

	err := d.client.Close()
	if d.tunnel != nil {
		if terr := d.tunnel.Close(); err == nil {
			err = terr
		}
	}
	util.WithSwitch(d.Name).Debug("Disconnected")
	return err
}
