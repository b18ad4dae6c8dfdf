package main

import (
	"strings"
	"testing"
)

func TestLookupTune(t *testing.T) {
	lib := map[string]string{"Alarm": "4a2", "scale": "3c1"}
	tests := []struct {
		query string
		name  string
		ok    bool
	}{
		{"Alarm", "Alarm", true},
		{"alarm", "Alarm", true},
		{" SCALE ", "scale", true},
		{"siren", "", false},
	}
	for _, tt := range tests {
		name, notation, ok := lookupTune(lib, tt.query)
		if ok != tt.ok || name != tt.name {
			t.Errorf("lookupTune(%q) = %q, %v; want %q, %v", tt.query, name, ok, tt.name, tt.ok)
		}
		if ok && notation != lib[name] {
			t.Errorf("lookupTune(%q) notation = %q", tt.query, notation)
		}
	}
}

func TestFormatLibrary(t *testing.T) {
	out := formatLibrary(map[string]string{"siren": "4a4,4d4", "beep": "4a2"})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "Beep") || !strings.Contains(lines[0], "1 notes") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Siren") || !strings.Contains(lines[1], "2 notes") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestUnknownTuneSuggests(t *testing.T) {
	lib := map[string]string{"Alarm": "4a2", "siren": "4a4,4d4"}
	if got, ok := suggestTune(lib, "alarn"); !ok || got != "Alarm" {
		t.Fatalf("suggestTune(alarn) = %q, %v", got, ok)
	}
	err := unknownTuneError(lib, "sirne")
	if !strings.HasPrefix(err.Error(), `unknown tune "sirne"`) {
		t.Fatalf("err = %v", err)
	}
}
