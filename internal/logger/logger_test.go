package logger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	t.Cleanup(func() {
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestInit(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expectError bool
	}{
		{
			name:        "Debug level",
			level:       "debug",
			expectError: false,
		},
		{
			name:        "Info level",
			level:       "info",
			expectError: false,
		},
		{
			name:        "Warn level",
			level:       "warn",
			expectError: false,
		},
		{
			name:        "Invalid level",
			level:       "verbose",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.level)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}

func TestLogging(t *testing.T) {
	buf := captureOutput(t)

	tests := []struct {
		name          string
		logFunc       func(string, ...map[string]interface{})
		message       string
		fields        map[string]interface{}
		expectedLevel string
	}{
		{
			name:          "Debug message",
			logFunc:       Debug,
			message:       "Debug test",
			expectedLevel: "debug",
		},
		{
			name:          "Info message",
			logFunc:       Info,
			message:       "Retrieving references",
			expectedLevel: "info",
		},
		{
			name:    "Warn with fields",
			logFunc: Warn,
			message: "Project listing has unexpected shape",
			fields: map[string]interface{}{
				"key": "value",
			},
			expectedLevel: "warning",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			EnableDebug()

			if tt.fields != nil {
				tt.logFunc(tt.message, tt.fields)
			} else {
				tt.logFunc(tt.message)
			}

			output := buf.String()
			if !strings.Contains(output, "level="+tt.expectedLevel) {
				t.Errorf("Expected log level %s, got %s", tt.expectedLevel, output)
			}
			if !strings.Contains(output, tt.message) {
				t.Errorf("Expected message %s, got %s", tt.message, output)
			}
			for k, v := range tt.fields {
				if !strings.Contains(output, k+"="+v.(string)) {
					t.Errorf("Expected field %s=%v in output: %s", k, v, output)
				}
			}
		})
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	buf := captureOutput(t)
	log.SetLevel(logrus.InfoLevel)

	Debug("request", map[string]interface{}{"url": "https://example.test"})
	if buf.Len() != 0 {
		t.Errorf("Expected no output at info level, got %q", buf.String())
	}
}

func TestError(t *testing.T) {
	buf := captureOutput(t)

	testMessage := "Export failed"
	testError := errors.New("test error")
	testFields := map[string]interface{}{
		"key": "value",
	}

	Error(testMessage, testError)
	output := buf.String()
	if !strings.Contains(output, "level=error") {
		t.Error("Expected error level")
	}
	if !strings.Contains(output, testMessage) {
		t.Error("Expected error message")
	}
	if !strings.Contains(output, testError.Error()) {
		t.Error("Expected error details")
	}

	buf.Reset()
	Error(testMessage, testError, testFields)
	output = buf.String()
	if !strings.Contains(output, "key=value") {
		t.Error("Expected error with fields")
	}
	if !strings.Contains(output, testError.Error()) {
		t.Error("Expected error details with fields")
	}
}

func TestStatusIgnoresLevel(t *testing.T) {
	buf := captureOutput(t)

	for _, level := range []string{"info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			buf.Reset()
			if err := Init(level); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			Status("Export output to: x.json")
			if buf.String() != "Export output to: x.json\n" {
				t.Errorf("Expected status line at level %s, got %q", level, buf.String())
			}
		})
	}
}
