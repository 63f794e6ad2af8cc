package main

import (
	"os"

	"github.com/getlantern/errors"
)

/*
createOutputFiles opens (truncating) the target and prediction files. If the
second cannot be opened the first is closed again.
*/
func createOutputFiles(truthPath string, predPath string) (truth *os.File, pred *os.File, err error) {
	truth, err = os.Create(truthPath)
	if err != nil {
		return nil, nil, errors.New("Error opening files for writing: %v", err).With("file", truthPath)
	}
	pred, err = os.Create(predPath)
	if err != nil {
		truth.Close()
		return nil, nil, errors.New("Error opening files for writing: %v", err).With("file", predPath)
	}
	return truth, pred, nil
}
