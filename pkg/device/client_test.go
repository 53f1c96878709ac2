package device

import "testing"

func TestTableKey(t *testing.T) {
	tests := []struct {
		table string
		match []string
		want  string
	}{
		{"ipv4_lpm", []string{"10.0.2.0/24"}, "TABLE|ipv4_lpm|10.0.2.0/24"},
		{"ecmp_nhop", []string{"1", "0"}, "TABLE|ecmp_nhop|1,0"},
		{"smac_rewrite", []string{"3"}, "TABLE|smac_rewrite|3"},
	}
	for _, tt := range tests {
		if got := tableKey(tt.table, tt.match); got != tt.want {
			t.Errorf("tableKey(%q, %v) = %q, want %q", tt.table, tt.match, got, tt.want)
		}
	}
}

func TestRegisterKey(t *testing.T) {
	if got := registerKey("byte_counter"); got != "REG|byte_counter" {
		t.Errorf("registerKey = %q", got)
	}
}
