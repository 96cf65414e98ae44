package benchmark

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunReportsAndCalls(t *testing.T) {
	var out bytes.Buffer
	called := false
	Run("damo_go check", &out, func() { called = true })
	if !called {
		t.Fatal("wrapped function was not called")
	}
	for _, want := range []string{"Running: damo_go check", "Time Elapsed", "GC Cycles", "CPU Cores"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, out.String())
		}
	}
}
