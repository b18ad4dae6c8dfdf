package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/f1monkey/spellchecker"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hexatune/music"
)

var (
	titleCaser = cases.Title(language.AmericanEnglish)
	foldCaser  = cases.Fold()
)

// lookupTune finds a library tune by name, ignoring case. It returns the
// stored name with the notation.
func lookupTune(lib map[string]string, name string) (string, string, bool) {
	if n, ok := lib[name]; ok {
		return name, n, true
	}
	want := foldCaser.String(strings.TrimSpace(name))
	for k, n := range lib {
		if foldCaser.String(k) == want {
			return k, n, true
		}
	}
	return "", "", false
}

// tuneNames returns the library names in sorted order.
func tuneNames(lib map[string]string) []string {
	names := make([]string, 0, len(lib))
	for k := range lib {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// formatLibrary renders one line per tune: title, note count and notation.
func formatLibrary(lib map[string]string) string {
	var b strings.Builder
	for _, name := range tuneNames(lib) {
		n := music.Compile(lib[name]).Len()
		fmt.Fprintf(&b, "%-12s %3d notes  %s\n", titleCaser.String(name), n, lib[name])
	}
	return b.String()
}

// suggestTune returns the library name closest to a misspelled one.
func suggestTune(lib map[string]string, name string) (string, bool) {
	sc, err := spellchecker.New(tuneAlphabet, spellchecker.WithMaxErrors(2))
	if err != nil {
		logDebug("spellchecker: %v", err)
		return "", false
	}
	for k := range lib {
		sc.Add(foldCaser.String(k))
	}
	word := foldCaser.String(strings.TrimSpace(name))
	suggestions, err := sc.Suggest(word, 1)
	if err != nil || len(suggestions) == 0 {
		return "", false
	}
	found, _, ok := lookupTune(lib, suggestions[0])
	return found, ok
}

const tuneAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789-_"

// unknownTuneError describes a failed lookup, with a suggestion when one is
// close enough.
func unknownTuneError(lib map[string]string, name string) error {
	if s, ok := suggestTune(lib, name); ok {
		return fmt.Errorf("unknown tune %q (did you mean %q?)", name, s)
	}
	return fmt.Errorf("unknown tune %q", name)
}
