package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteTablePadsRaggedRows(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"ID", "Order", "Courier"}, [][]string{
		{"1", "1001", "DPD"},
		{"2", "1002"},
	}, 0)

	out := buf.String()
	for _, want := range []string{"ID", "Order", "Courier", "1001", "DPD"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<nil>") {
		t.Fatalf("missing cells must render empty:\n%s", out)
	}
}
