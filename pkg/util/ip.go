package util

import (
	"fmt"
	"net"
)

// ParseSubnet parses CIDR notation and requires the address to be the
// network address (10.0.1.0/24 is valid, 10.0.1.5/24 is not).
func ParseSubnet(cidr string) (*net.IPNet, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	if !ip.Equal(ipNet.IP) {
		return nil, fmt.Errorf("%s is not a network address (want %s)", cidr, ipNet)
	}
	return ipNet, nil
}

// AddrInSubnet reports whether addr is an address inside the subnet.
func AddrInSubnet(addr, cidr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	return ipNet.Contains(ip)
}

// ValidMAC reports whether s parses as a MAC address.
func ValidMAC(s string) bool {
	_, err := net.ParseMAC(s)
	return err == nil
}
