package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// writeInputEPUB creates a placeholder input file; readCLIOptions only
// checks existence, not archive validity.
func writeInputEPUB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "novel.epub")
	if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
		t.Fatalf("failed to write input file: %v", err)
	}
	return path
}

func TestReadCLIOptions_Defaults(t *testing.T) {
	input := writeInputEPUB(t)
	cmd := newRootCmd()
	opts, err := readCLIOptions(cmd, []string{input})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}

	want := strings.TrimSuffix(input, ".epub") + "_vertical.epub"
	if opts.OutputPath != want {
		t.Fatalf("OutputPath = %q, want %q", opts.OutputPath, want)
	}
	if opts.Profile == nil || opts.Profile.Language != "zh-TW" {
		t.Fatalf("Profile should default to the Traditional Chinese profile")
	}
	if opts.Logger == nil {
		t.Fatal("Logger is nil, want non-nil")
	}
	if !opts.Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("Logger should be enabled at INFO level by default")
	}
	if opts.Logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("Logger should not be enabled at DEBUG level by default")
	}
}

func TestReadCLIOptions_CustomOutput(t *testing.T) {
	input := writeInputEPUB(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--output", "./out/tategaki.epub"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts, err := readCLIOptions(cmd, []string{input})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if opts.OutputPath != "./out/tategaki.epub" {
		t.Fatalf("OutputPath = %q", opts.OutputPath)
	}
}

func TestReadCLIOptions_NotAnEPUB(t *testing.T) {
	cmd := newRootCmd()
	_, err := readCLIOptions(cmd, []string{"./books/novel.mobi"})
	if err == nil || !strings.Contains(err.Error(), "not an EPUB") {
		t.Fatalf("expected extension validation error, got %v", err)
	}
}

func TestReadCLIOptions_InputNotFound(t *testing.T) {
	cmd := newRootCmd()
	_, err := readCLIOptions(cmd, []string{filepath.Join(t.TempDir(), "absent.epub")})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected input existence error, got %v", err)
	}
}

func TestReadCLIOptions_OutputEqualsInput(t *testing.T) {
	input := writeInputEPUB(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--output", input}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	_, err := readCLIOptions(cmd, []string{input})
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected same-path validation error, got %v", err)
	}
}

func TestReadCLIOptions_InvalidLogLevel(t *testing.T) {
	input := writeInputEPUB(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--log-level", "trace"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	_, err := readCLIOptions(cmd, []string{input})
	if err == nil || !strings.Contains(err.Error(), "--log-level") {
		t.Fatalf("expected log-level validation error, got %v", err)
	}
}

func TestReadCLIOptions_Verbose(t *testing.T) {
	input := writeInputEPUB(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--verbose"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts, err := readCLIOptions(cmd, []string{input})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if !opts.Logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("Logger should be enabled at DEBUG level with --verbose")
	}
}

func TestReadCLIOptions_ConfigFile(t *testing.T) {
	input := writeInputEPUB(t)
	configPath := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(configPath, []byte("language: ja\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", configPath}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts, err := readCLIOptions(cmd, []string{input})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if opts.Profile.Language != "ja" {
		t.Fatalf("Profile.Language = %q, want ja", opts.Profile.Language)
	}
}

func TestReadCLIOptions_MissingConfigFile(t *testing.T) {
	input := writeInputEPUB(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	if _, err := readCLIOptions(cmd, []string{input}); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"./books/sample.epub", "./books/sample_vertical.epub"},
		{"novel.EPUB", "novel_vertical.EPUB"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.input); got != tt.want {
			t.Fatalf("defaultOutputPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSamePath(t *testing.T) {
	if !samePath("./books/a.epub", "books/a.epub") {
		t.Fatal("equivalent paths should compare equal")
	}
	if samePath("a.epub", "b.epub") {
		t.Fatal("different paths should not compare equal")
	}
}
