// Package printer hands resolved label payloads to the OS print spooler.
package printer

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"labelspool/internal/config"
	"labelspool/internal/logging"
)

// Spooler writes a label payload to a temporary artifact and submits it to
// the system print queue. The artifact is removed on every exit path.
type Spooler struct {
	printerName string
	binary      string
	tempDir     string
	run         runFunc
	logger      *slog.Logger
}

// runFunc executes the spooler binary; injected so tests avoid a real lp.
type runFunc func(name string, args ...string) error

// New builds a spooler from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Spooler {
	return &Spooler{
		printerName: cfg.Printer.Name,
		binary:      cfg.PrintBinary(),
		tempDir:     os.TempDir(),
		run:         runCommand,
		logger:      logging.WithComponent(logger, "printer"),
	}
}

// Print submits one label payload to the print queue. The print invocation
// itself carries no timeout; the spooler enqueues and returns quickly.
func (s *Spooler) Print(payload []byte, ext string) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty label payload")
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "pdf"
	}

	path := filepath.Join(s.tempDir, fmt.Sprintf("label_%s.%s", uuid.NewString(), ext))
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write label artifact: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove label artifact", logging.String("path", path), logging.Error(err))
		}
	}()

	if err := s.run(s.binary, "-d", s.printerName, path); err != nil {
		return fmt.Errorf("submit label to printer %q: %w", s.printerName, err)
	}
	return nil
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}
