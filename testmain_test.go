package main

import (
	"os"
	"testing"
)

// TestMain keeps settings, stats and logs out of the source tree.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "hexatune-test")
	if err != nil {
		panic(err)
	}
	dataDirPath = dir
	logDir = dir
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// useDataDir points dataDirPath at a fresh directory for one test.
func useDataDir(t *testing.T) string {
	t.Helper()
	old := dataDirPath
	dataDirPath = t.TempDir()
	t.Cleanup(func() { dataDirPath = old })
	return dataDirPath
}
