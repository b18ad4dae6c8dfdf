package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// playStats counts how often each source was played. Library tunes are
// keyed by name; everything else by its source kind ("notation", "buzz").
type playStats struct {
	Plays    map[string]int `json:"plays"`
	Ticks    uint64         `json:"ticks"`
	LastPlay time.Time      `json:"last_play"`
}

const statsFile = "stats.json"

// dataDirPath holds the directory with settings, stats and the soundfont. It
// resolves next to the executable so the data stays with the binary
// regardless of the working directory; on macOS it lives under Application
// Support.
var dataDirPath = func() string {
	if runtime.GOOS == "darwin" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", "hexatune")
		}
	}
	if exe, err := os.Executable(); err == nil {
		if dir, err := filepath.Abs(filepath.Dir(exe)); err == nil {
			return filepath.Join(dir, "data")
		}
	}
	// Fallback to relative path.
	return "data"
}()

var (
	stats      playStats
	statsMu    sync.Mutex
	statsDirty bool
)

func loadStats() {
	statsMu.Lock()
	defer statsMu.Unlock()
	stats = playStats{Plays: make(map[string]int)}

	path := filepath.Join(dataDirPath, statsFile)
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &stats); err != nil {
			logWarn("load stats: %v", err)
		}
	}
	if stats.Plays == nil {
		stats.Plays = make(map[string]int)
	}
}

// recordPlay counts one play of key lasting ticks.
func recordPlay(key string, ticks uint64) {
	statsMu.Lock()
	if stats.Plays == nil {
		stats.Plays = make(map[string]int)
	}
	stats.Plays[key]++
	stats.Ticks += ticks
	stats.LastPlay = time.Now()
	statsDirty = true
	statsMu.Unlock()
}

func saveStats() {
	statsMu.Lock()
	defer statsMu.Unlock()
	if !statsDirty {
		return
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		logError("save stats: %v", err)
		return
	}
	if err := os.MkdirAll(dataDirPath, 0o755); err != nil {
		logError("save stats: %v", err)
		return
	}
	path := filepath.Join(dataDirPath, statsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logError("save stats: %v", err)
		return
	}
	statsDirty = false
}
