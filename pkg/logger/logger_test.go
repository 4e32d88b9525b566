package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetupLoggerWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	if err := SetupLoggerInDir(dir); err != nil {
		t.Fatalf("SetupLoggerInDir: %v", err)
	}
	t.Cleanup(func() { Close() })

	Info("asset %d approved", 42)
	Warning("cache miss for %s", "hr@corp.io")
	Error("publish failed: %v", "broker down")

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	for _, want := range []string{"INFO: ", "asset 42 approved", "WARNING: ", "ERROR: ", "broker down"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q", want)
		}
	}
}

func TestLoggingBeforeSetupDoesNotPanic(t *testing.T) {
	Close()
	Info("no file yet")
}
