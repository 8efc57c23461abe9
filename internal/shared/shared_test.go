package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the provided writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		logger.Info("hello", "key", "value")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "key=value") {
			t.Errorf("unexpected log output: %s", out)
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		if NewLogger(nil) == nil {
			t.Fatal("expected a logger")
		}
	})
}

func TestWithLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := WithLogger(NewLogger(buf), "playlist", "evening")

	logger.Info("run complete")

	if !strings.Contains(buf.String(), "playlist=evening") {
		t.Errorf("expected bound field in output: %s", buf.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf)
	SetLogLevel(logger, log.ErrorLevel)

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info to be suppressed, got %s", buf.String())
	}

	logger.Error("reported")
	if !strings.Contains(buf.String(), "reported") {
		t.Errorf("expected error to be reported, got %s", buf.String())
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rotor.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}

	logger.Info("to file")

	content := mustRead(t, path)
	if !strings.Contains(content, "to file") {
		t.Errorf("expected log line in file, got %s", content)
	}
}

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == "" || second == "" {
		t.Fatal("expected non-empty IDs")
	}
	if first == second {
		t.Error("expected unique IDs")
	}
	if len(first) != 36 {
		t.Errorf("expected UUID format, got %q", first)
	}
}
