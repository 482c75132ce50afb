package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"voice-assistant/internal/domain"
)

const (
	promptColumn   = "input"
	responseColumn = "output"
)

// CSVSource reads pairs from a CSV file whose header names an input and an
// output column. Other columns are ignored.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.Path
}

func (s *CSVSource) Load(_ context.Context) ([]domain.Pair, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	pairs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return pairs, nil
}

// ReadCSV parses a header row followed by records. Every record must have
// as many fields as the header.
func ReadCSV(r io.Reader) ([]domain.Pair, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	in, out := -1, -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch strings.TrimSpace(name) {
		case promptColumn:
			if in < 0 {
				in = i
			}
		case responseColumn:
			if out < 0 {
				out = i
			}
		}
	}
	if in < 0 || out < 0 {
		return nil, fmt.Errorf("header must contain %q and %q columns, got %v", promptColumn, responseColumn, header)
	}

	var pairs []domain.Pair
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}

		if p, ok := newPair(record[in], record[out]); ok {
			pairs = append(pairs, p)
		}
	}

	return pairs, nil
}

// newPair drops records with a blank prompt or response.
func newPair(prompt, response string) (domain.Pair, bool) {
	if strings.TrimSpace(prompt) == "" || strings.TrimSpace(response) == "" {
		return domain.Pair{}, false
	}
	return domain.Pair{Prompt: prompt, Response: response}, true
}
