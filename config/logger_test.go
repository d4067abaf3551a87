package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggingConfig_Prepare(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "xcss.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hidden message")
	log.Info("visible message")
	_ = log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(data), "visible message") || strings.Contains(string(data), "hidden message") {
		t.Errorf("unexpected log content:\n%s", data)
	}
}

func TestLoggingConfig_PrepareReportForcesDebug(t *testing.T) {
	dir := t.TempDir()
	rpt, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "xcss.log"), Mode: "append"},
	}
	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("debug message")
	_ = log.Sync()

	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := readZip(t, rpt.Name())["final.log"]; !strings.Contains(got, "debug message") {
		t.Errorf("final.log = %q", got)
	}
}

func TestLoggingConfig_PrepareConsoleOnly(t *testing.T) {
	conf := LoggingConfig{ConsoleLogger: LoggerConfig{Level: "none"}, FileLogger: LoggerConfig{Level: "none"}}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Error("logger with all outputs disabled must not accept debug entries")
	}
}
