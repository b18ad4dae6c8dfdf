package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"hexatune/music"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	useDataDir(t)
	if loadSettings() {
		t.Fatalf("loadSettings reported success without a file")
	}
	if gs.Tempo != gsdef.Tempo || gs.Output != gsdef.Output {
		t.Fatalf("defaults not applied: %+v", gs)
	}
	if _, ok := gs.Tunes["alarm"]; !ok {
		t.Fatalf("default library missing")
	}
}

func TestSaveLoadSettingsRoundTrip(t *testing.T) {
	dir := useDataDir(t)
	gs = defaultSettings()
	gs.Tempo = 90
	gs.Output = outputTimer
	gs.Tunes["mine"] = "3c1"
	saveSettings()

	if _, err := os.Stat(filepath.Join(dir, settingsFile+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temporary settings file left behind: %v", err)
	}
	gs = defaultSettings()
	if !loadSettings() {
		t.Fatalf("loadSettings failed")
	}
	if gs.Tempo != 90 || gs.Output != outputTimer || gs.Tunes["mine"] != "3c1" {
		t.Fatalf("settings not restored: %+v", gs)
	}
}

func TestLoadSettingsSanitizes(t *testing.T) {
	dir := useDataDir(t)
	raw := map[string]any{
		"Version":    SETTINGS_VERSION,
		"Tempo":      5000,
		"Volume":     3.0,
		"SampleRate": 10,
		"Output":     "laser",
		"Program":    300,
		"Baud":       -1,
	}
	data, _ := json.Marshal(raw)
	if err := os.WriteFile(filepath.Join(dir, settingsFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if !loadSettings() {
		t.Fatalf("loadSettings failed")
	}
	if gs.Tempo != music.MaxTempo {
		t.Errorf("Tempo = %d, want %d", gs.Tempo, music.MaxTempo)
	}
	if gs.Volume != gsdef.Volume || gs.SampleRate != gsdef.SampleRate {
		t.Errorf("Volume/SampleRate not reset: %v %d", gs.Volume, gs.SampleRate)
	}
	if gs.Output != gsdef.Output || gs.Program != gsdef.Program || gs.Baud != gsdef.Baud {
		t.Errorf("Output/Program/Baud not reset: %q %d %d", gs.Output, gs.Program, gs.Baud)
	}
	if len(gs.Tunes) != len(gsdef.Tunes) {
		t.Errorf("missing library not defaulted: %v", gs.Tunes)
	}
}

func TestLoadSettingsVersionMismatch(t *testing.T) {
	dir := useDataDir(t)
	data := []byte(`{"Version": 999, "Tempo": 60}`)
	if err := os.WriteFile(filepath.Join(dir, settingsFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if loadSettings() {
		t.Fatalf("loadSettings accepted a future version")
	}
	if gs.Tempo != gsdef.Tempo {
		t.Fatalf("Tempo = %d, want default", gs.Tempo)
	}
}

// gsSharesDefaults is captured at package init, before any test replaces gs.
var gsSharesDefaults = reflect.ValueOf(gs.Tunes).Pointer() == reflect.ValueOf(gsdef.Tunes).Pointer()

func TestInitialSettingsOwnLibrary(t *testing.T) {
	if gsSharesDefaults {
		t.Fatalf("gs.Tunes aliases the default library at startup")
	}
}

func TestDefaultSettingsCopiesLibrary(t *testing.T) {
	s := defaultSettings()
	s.Tunes["beep"] = "changed"
	if gsdef.Tunes["beep"] == "changed" {
		t.Fatalf("defaultSettings shares the default library")
	}
}

func TestStatsRecordAndSave(t *testing.T) {
	dir := useDataDir(t)
	loadStats()
	recordPlay("alarm", 30)
	recordPlay("alarm", 30)
	recordPlay("buzz", 8)
	saveStats()

	data, err := os.ReadFile(filepath.Join(dir, statsFile))
	if err != nil {
		t.Fatalf("stats not written: %v", err)
	}
	var got playStats
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Plays["alarm"] != 2 || got.Plays["buzz"] != 1 || got.Ticks != 68 {
		t.Fatalf("stats = %+v", got)
	}
	if got.LastPlay.IsZero() {
		t.Fatalf("LastPlay not set")
	}
}
