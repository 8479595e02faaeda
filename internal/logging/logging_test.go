package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"", LevelInfo, true},
		{"WARN", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"loud", LevelInfo, false},
	}
	for _, c := range cases {
		got, err := ParseLevel(c.in)
		if (err == nil) != c.ok {
			t.Errorf("ParseLevel(%q) error = %v, want ok=%v", c.in, err, c.ok)
		}
		if c.ok && got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(empty) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestTextOutputCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: LevelInfo, Format: FormatText, Output: &buf, Component: "keyboard"})

	l.Info("keymap installed", "bytes", 1234)

	out := buf.String()
	if !strings.Contains(out, "component=keyboard") {
		t.Errorf("output missing component attr: %q", out)
	}
	if !strings.Contains(out, "keymap installed") {
		t.Errorf("output missing message: %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: LevelDebug, Format: FormatJSON, Output: &buf, Component: "compose"})

	l.Debug("compose disabled", "locale", "C")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if entry["component"] != "compose" {
		t.Errorf("component = %v, want compose", entry["component"])
	}
	if entry["locale"] != "C" {
		t.Errorf("locale = %v, want C", entry["locale"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: LevelWarn, Format: FormatText, Output: &buf})

	l.Info("suppressed")
	l.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("info line leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "emitted") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: LevelInfo, Format: FormatText, Output: &buf, Component: "wlkbd"})

	l.WithComponent("localed").Info("queried locale1")

	if !strings.Contains(buf.String(), "component=localed") {
		t.Errorf("derived component missing: %q", buf.String())
	}
}
