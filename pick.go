package main

import (
	"errors"

	"github.com/skratchdot/open-golang/open"
	"github.com/sqweek/dialog"
)

var errPickCancelled = errors.New("file dialog cancelled")

// pickTuneFile asks for a tune file with the native file dialog.
func pickTuneFile() (string, error) {
	filename, err := dialog.File().Filter("Tune files", "tune", "txt").Load()
	if err != nil {
		if err == dialog.Cancelled {
			return "", errPickCancelled
		}
		return "", err
	}
	return filename, nil
}

// openRendered hands a rendered file to the system's default application.
func openRendered(path string) {
	if err := open.Run(path); err != nil {
		logWarn("open %s: %v", path, err)
	}
}
