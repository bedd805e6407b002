package printer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labelspool/internal/logging"
	"labelspool/internal/testsupport"
)

func newTestSpooler(t *testing.T, run runFunc) *Spooler {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s := New(cfg, logging.NewNop())
	s.tempDir = t.TempDir()
	s.run = run
	return s
}

func TestPrintWritesArtifactAndCleansUp(t *testing.T) {
	var printedPath string
	var sawContent []byte
	s := newTestSpooler(t, func(name string, args ...string) error {
		if name != "lp" {
			t.Errorf("binary = %q", name)
		}
		if len(args) != 3 || args[0] != "-d" || args[1] != "Xprinter" {
			t.Errorf("args = %v", args)
		}
		printedPath = args[2]
		data, err := os.ReadFile(printedPath)
		if err != nil {
			t.Errorf("artifact unreadable during print: %v", err)
		}
		sawContent = data
		return nil
	})

	payload := []byte("%PDF-1.4 label")
	if err := s.Print(payload, "pdf"); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if string(sawContent) != string(payload) {
		t.Fatalf("artifact content = %q", sawContent)
	}
	if !strings.HasSuffix(printedPath, ".pdf") {
		t.Fatalf("artifact path = %q", printedPath)
	}
	if _, err := os.Stat(printedPath); !os.IsNotExist(err) {
		t.Fatalf("artifact not cleaned up: %v", err)
	}
}

func TestPrintCleansUpOnSpoolerFailure(t *testing.T) {
	var printedPath string
	s := newTestSpooler(t, func(name string, args ...string) error {
		printedPath = args[len(args)-1]
		return errors.New("exit status 1")
	})

	err := s.Print([]byte("payload"), "pdf")
	if err == nil {
		t.Fatal("expected print failure")
	}
	if !strings.Contains(err.Error(), "Xprinter") {
		t.Fatalf("error should name the printer: %v", err)
	}
	if _, statErr := os.Stat(printedPath); !os.IsNotExist(statErr) {
		t.Fatalf("artifact not cleaned up after failure: %v", statErr)
	}
}

func TestPrintRejectsEmptyPayload(t *testing.T) {
	s := newTestSpooler(t, func(string, ...string) error {
		t.Fatal("run should not be called")
		return nil
	})
	if err := s.Print(nil, "pdf"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestPrintDefaultsExtension(t *testing.T) {
	var printedPath string
	s := newTestSpooler(t, func(name string, args ...string) error {
		printedPath = args[len(args)-1]
		return nil
	})
	if err := s.Print([]byte("payload"), ""); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if filepath.Ext(printedPath) != ".pdf" {
		t.Fatalf("expected default .pdf extension, got %q", printedPath)
	}
}
