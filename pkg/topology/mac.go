package topology

import "fmt"

// PortMAC returns the deterministic MAC address a switch exposes on one of its
// ports. The runtime harness assigns MACs by the same rule, so the control
// plane can derive neighbor MACs without querying switches.
func (t *Topology) PortMAC(name string, port int) (string, error) {
	sw, ok := t.switches[name]
	if !ok {
		return "", fmt.Errorf("unknown switch %q", name)
	}
	return portMAC(sw.ID, port), nil
}

func portMAC(switchID, port int) string {
	return fmt.Sprintf("00:00:%02x:00:00:%02x", switchID, port)
}
