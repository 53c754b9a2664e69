package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: false, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")

	logFile := filepath.Join(logDir, "weekdiary.log")
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Test warning message") {
		t.Errorf("log file does not contain warning, got %q", string(data))
	}
	if strings.Contains(string(data), "Test debug message") {
		t.Errorf("debug message written outside debug mode")
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("debug visible in debug mode")

	found := false
	for _, line := range Recent(0) {
		if strings.Contains(line, "debug visible in debug mode") {
			found = true
		}
	}
	if !found {
		t.Error("debug message missing from recent lines")
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestRingWriter(t *testing.T) {
	r := &ringWriter{limit: 3}

	for i := 0; i < 5; i++ {
		fmt.Fprintf(r, "line %d\n", i)
	}
	got := r.tail(0)
	want := []string{"line 2", "line 3", "line 4"}
	if len(got) != len(want) {
		t.Fatalf("tail() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tail()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := r.tail(1); len(got) != 1 || got[0] != "line 4" {
		t.Errorf("tail(1) = %v", got)
	}
}

func TestRingWriterPartialLines(t *testing.T) {
	r := &ringWriter{limit: 10}

	r.Write([]byte("hel"))
	r.Write([]byte("lo\nwor"))
	if got := r.tail(0); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("tail() = %v, want [hello]", got)
	}
	r.Write([]byte("ld\n"))
	if got := r.tail(0); len(got) != 2 || got[1] != "world" {
		t.Fatalf("tail() = %v, want [hello world]", got)
	}
}
