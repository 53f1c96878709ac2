package device

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
)

// SSHTunnel forwards a local TCP port to a switch runtime through an SSH
// connection. Used when runtime endpoints listen only on loopback inside
// their testbed host and are not reachable directly.
type SSHTunnel struct {
	localAddr  string // "127.0.0.1:<port>"
	remoteAddr string // runtime address as seen from inside the SSH host
	sshClient  *ssh.Client
	listener   net.Listener
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewSSHTunnel dials SSH on the runtime's host and opens a local listener on
// a random port. Connections to the local port are forwarded to the runtime
// address inside the SSH host.
func NewSSHTunnel(runtimeAddr, user, pass string) (*SSHTunnel, error) {
	host, port, err := net.SplitHostPort(runtimeAddr)
	if err != nil {
		return nil, fmt.Errorf("runtime address %q: %w", runtimeAddr, err)
	}

	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
		},
		// Lab/test environment — production would verify host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	sshClient, err := ssh.Dial("tcp", host+":22", config)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", host, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &SSHTunnel{
		localAddr:  listener.Addr().String(),
		remoteAddr: "127.0.0.1:" + port,
		sshClient:  sshClient,
		listener:   listener,
		done:       make(chan struct{}),
	}

	t.wg.Add(1)
	go t.acceptLoop()

	return t, nil
}

// LocalAddr returns the local address (e.g. "127.0.0.1:54321") that forwards
// to the runtime inside the SSH host.
func (t *SSHTunnel) LocalAddr() string {
	return t.localAddr
}

// Close stops the listener, closes the SSH connection, and waits for
// all forwarding goroutines to finish.
func (t *SSHTunnel) Close() error {
	close(t.done)
	t.listener.Close()
	t.wg.Wait()
	return t.sshClient.Close()
}

func (t *SSHTunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				if strings.Contains(err.Error(), "use of closed") {
					return
				}
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *SSHTunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.sshClient.Dial("tcp", t.remoteAddr)
	if err != nil {
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	<-done
}
