package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableEmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "SWITCH", "ENTRIES")
	tbl.Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTableHeadersOnFirstRow(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "SWITCH", "ENTRIES", "GROUPS")
	tbl.Row("s1", "4", "1")
	tbl.Row("s3", "4", "2")
	tbl.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "SWITCH") || !strings.Contains(lines[0], "GROUPS") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "------") {
		t.Errorf("divider line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "s1") {
		t.Errorf("first row = %q", lines[2])
	}
}

func TestTablePrefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "PORT", "MAC").WithPrefix("  ")
	tbl.Row("2", "00:00:02:00:00:02")
	tbl.Flush()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing prefix", line)
		}
	}
}

func TestDotPad(t *testing.T) {
	if got := DotPad("s1", 10); got != "s1 ......." {
		t.Errorf("DotPad = %q", got)
	}
	if got := DotPad("longswitchname", 5); got != "longswitchname" {
		t.Errorf("DotPad overlong = %q", got)
	}
}
