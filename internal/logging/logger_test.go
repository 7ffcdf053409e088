package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevels(t *testing.T) {
	t.Setenv(DebugEnv, "")

	quiet, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if quiet.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be off by default")
	}

	verbose, err := New(Options{Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	if !verbose.Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should enable debug level")
	}

	t.Setenv(DebugEnv, "on")
	fromEnv, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !fromEnv.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("%s=on should enable debug level", DebugEnv)
	}
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elfc.log")
	log, err := New(Options{LogPath: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("object written")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "object written") {
		t.Errorf("log file missing message: %q", data)
	}
}
