package util

import "testing"

func TestParseSubnet(t *testing.T) {
	if _, err := ParseSubnet("10.0.1.0/24"); err != nil {
		t.Errorf("valid subnet rejected: %v", err)
	}
	if _, err := ParseSubnet("10.0.1.5/24"); err == nil {
		t.Error("non-network address accepted")
	}
	if _, err := ParseSubnet("10.0.1.0"); err == nil {
		t.Error("missing mask accepted")
	}
	if _, err := ParseSubnet("not-a-subnet"); err == nil {
		t.Error("garbage accepted")
	}
}

func TestAddrInSubnet(t *testing.T) {
	tests := []struct {
		addr string
		cidr string
		want bool
	}{
		{"10.0.1.254", "10.0.1.0/24", true},
		{"10.0.1.1", "10.0.1.0/24", true},
		{"10.0.2.1", "10.0.1.0/24", false},
		{"garbage", "10.0.1.0/24", false},
		{"10.0.1.1", "garbage", false},
	}
	for _, tt := range tests {
		if got := AddrInSubnet(tt.addr, tt.cidr); got != tt.want {
			t.Errorf("AddrInSubnet(%q, %q) = %v, want %v", tt.addr, tt.cidr, got, tt.want)
		}
	}
}

func TestValidMAC(t *testing.T) {
	if !ValidMAC("00:00:02:00:00:02") {
		t.Error("valid MAC rejected")
	}
	if ValidMAC("00:00:02") {
		t.Error("short MAC accepted")
	}
	if ValidMAC("zz:00:00:00:00:00") {
		t.Error("non-hex MAC accepted")
	}
}
