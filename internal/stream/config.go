package stream

import (
	"fmt"
	"os"
)

type SourceType string

const (
	SourceTypeCSV      SourceType = "CSV"
	SourceTypeScenario SourceType = "SCENARIO"
)

type Config struct {
	Type       SourceType `envconfig:"STREAM_TYPE" default:"SCENARIO"`
	Path       string     `envconfig:"STREAM_PATH"`
	NumClasses int        `envconfig:"STREAM_NUM_CLASSES" default:"2"`
}

// SourceFor opens the configured stream. CSV sources hold the file open
// for the lifetime of the returned source; the closer releases it.
func SourceFor(cfg *Config) (Source, func() error, error) {
	switch cfg.Type {
	case SourceTypeCSV:
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open stream file: %w", err)
		}
		src, err := NewCSVSource(f, cfg.NumClasses)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return src, f.Close, nil
	case SourceTypeScenario:
		sc, err := LoadScenario(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		gen, err := NewGenerator(sc)
		if err != nil {
			return nil, nil, err
		}
		return gen, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown stream type: %s", cfg.Type)
	}
}
