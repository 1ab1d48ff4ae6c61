// Package config describes a single word-cloud rendering run.
package config

import (
	"github.com/pkg/errors"
)

// Config holds everything the render pipeline needs. It replaces paths
// embedded in code: a run depends on nothing but these values.
type Config struct {
	InputPath   string
	LabelColumn string
	FreqColumn  string
	// FontPath may be left empty by callers that supply a bundled font.
	FontPath   string
	OutputPath string
	// Show opens the rendered image in the system viewer after saving.
	Show bool
}

// Default returns the configuration of a plain `word,freq` csv run.
func Default() Config {
	return Config{
		InputPath:   "text/word.csv",
		LabelColumn: "word",
		FreqColumn:  "freq",
		OutputPath:  "image/word.png",
	}
}

// Validate checks that all required fields are set.
func (c Config) Validate() error {
	switch {
	case c.InputPath == "":
		return errors.New("input path is required")
	case c.LabelColumn == "":
		return errors.New("label column is required")
	case c.FreqColumn == "":
		return errors.New("frequency column is required")
	case c.OutputPath == "":
		return errors.New("output path is required")
	}
	return nil
}
