package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"hexatune/music"
)

const SETTINGS_VERSION = 1

// Tone outputs selectable with -out or the Output setting.
const (
	outputSpeaker   = "speaker"
	outputSoundFont = "soundfont"
	outputTimer     = "timer"
	outputNull      = "null"
)

type settings struct {
	Version int

	// Tempo is the quarter-note tempo in BPM; one tick is a 32nd note.
	Tempo      int
	Volume     float64
	SampleRate int
	Output     string
	// SoundFont is resolved relative to the data directory.
	SoundFont string
	// Program is the General MIDI program used by the soundfont output and
	// MIDI export.
	Program int
	Strict  bool
	Notify  bool
	Baud    int

	// Tunes is the named tune library.
	Tunes map[string]string
}

var gs settings = defaultSettings()

// settingsLoaded reports whether settings were successfully loaded from disk.
var settingsLoaded bool

var gsdef settings = settings{
	Version: SETTINGS_VERSION,

	Tempo:      music.DefaultTempo,
	Volume:     0.25,
	SampleRate: 44100,
	Output:     outputSpeaker,
	SoundFont:  "soundfont.sf2",
	Program:    80, // Lead 1 (square)
	Strict:     false,
	Notify:     false,
	Baud:       9600,

	Tunes: map[string]string{
		"beep":   "4a2",
		"alarm":  "4a2,0r2,4a2,0r2,4a2,0r2,4a8",
		"scale":  "3c4,3d4,3e4,3f4,3g4,4a4,4b4,4c8",
		"charge": "3g2,4c2,4e2,4g4,0r2,4e2,4g8",
		"siren":  "4a4,4d4,4a4,4d4,4a4,4d4",
	},
}

const settingsFile = "settings.json"

func loadSettings() bool {
	path := filepath.Join(dataDirPath, settingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		gs = defaultSettings()
		settingsLoaded = false
		return false
	}

	tmp := defaultSettings()
	tmp.Tunes = nil
	if err := json.Unmarshal(data, &tmp); err != nil {
		logWarn("settings %s: %v", path, err)
		gs = defaultSettings()
		settingsLoaded = false
		return false
	}
	if tmp.Version != SETTINGS_VERSION {
		gs = defaultSettings()
		settingsLoaded = false
		return false
	}
	gs = tmp
	settingsLoaded = true

	if gs.Tunes == nil {
		gs.Tunes = defaultSettings().Tunes
	}
	gs.Tempo = music.ClampTempo(gs.Tempo)
	if gs.Volume < 0 || gs.Volume > 1 {
		gs.Volume = gsdef.Volume
	}
	if gs.SampleRate < 8000 || gs.SampleRate > 192000 {
		gs.SampleRate = gsdef.SampleRate
	}
	if gs.Program < 0 || gs.Program > 127 {
		gs.Program = gsdef.Program
	}
	if gs.Baud <= 0 {
		gs.Baud = gsdef.Baud
	}
	switch gs.Output {
	case outputSpeaker, outputSoundFont, outputTimer, outputNull:
	default:
		gs.Output = gsdef.Output
	}
	return settingsLoaded
}

// defaultSettings returns gsdef with its own copy of the tune library.
func defaultSettings() settings {
	s := gsdef
	s.Tunes = make(map[string]string, len(gsdef.Tunes))
	for k, v := range gsdef.Tunes {
		s.Tunes[k] = v
	}
	return s
}

func saveSettings() {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.MkdirAll(dataDirPath, 0o755); err != nil {
		logError("save settings: %v", err)
		return
	}
	path := filepath.Join(dataDirPath, settingsFile)
	if err := os.WriteFile(path+".tmp", data, 0644); err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		logError("save settings: %v", err)
	}
}
