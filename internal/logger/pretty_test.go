package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: LevelDebug}, false))

	tests := []struct {
		name string
		log  func()
		want []string
	}{
		{
			name: "persistent and record attrs",
			log:  func() { l.With("status", "STARTED").Info("transition", "from", "STOPPED") },
			want: []string{"INFO ", "transition", "status=STARTED", "from=STOPPED"},
		},
		{
			name: "group prefixes",
			log:  func() { l.WithGroup("db").With("dir", "/data/graph.db").Info("start", "pid", 42) },
			want: []string{"db.dir=/data/graph.db", "db.pid=42"},
		},
		{
			name: "nested groups",
			log:  func() { l.WithGroup("tray").WithGroup("menu").Debug("refresh", "items", 3) },
			want: []string{"DEBUG", "tray.menu.items=3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
			if strings.Count(out, "\n") != 1 {
				t.Errorf("expected one line, got %q", out)
			}
		})
	}
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: LevelWarn}, false))
	l.Info("hidden")
	l.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("level filter output = %q", out)
	}
}

func TestPrettyHandler_ColorAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelInfo, ReplaceAttr: RedactAttr}
	slog.New(NewPrettyHandler(&buf, opts, true)).Error("keychain read failed", "password", "hunter2")

	out := buf.String()
	if !strings.Contains(out, levelColors[slog.LevelError]) {
		t.Errorf("missing error color: %q", out)
	}
	if strings.Contains(out, "hunter2") || !strings.Contains(out, redacted) {
		t.Errorf("password not redacted: %q", out)
	}
}
