// Package corpus provides the tabular resources the matcher is built from.
package corpus

import (
	"fmt"
	"path/filepath"
	"strings"

	"voice-assistant/config"
	"voice-assistant/internal/matcher"
)

// FromConfig picks a source by corpus.format, or by file extension when the
// format is empty.
func FromConfig(cfg config.CorpusConfig) (matcher.CorpusSource, error) {
	format := cfg.Format
	if format == "" {
		switch strings.ToLower(filepath.Ext(cfg.Path)) {
		case ".db", ".sqlite", ".sqlite3":
			format = "sqlite"
		default:
			format = "csv"
		}
	}

	switch format {
	case "csv":
		return NewCSVSource(cfg.Path), nil
	case "sqlite":
		return NewSQLiteSource(cfg.Path, cfg.Table), nil
	default:
		return nil, fmt.Errorf("unknown corpus format %q", format)
	}
}
