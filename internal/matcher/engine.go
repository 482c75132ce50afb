// Package matcher answers free-text queries with the closest canned response
// from a fixed corpus, using TF-IDF vectors and cosine similarity.
package matcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"voice-assistant/internal/domain"
)

const (
	// DefaultThreshold is the similarity a match must exceed to be answered.
	DefaultThreshold = 0.2

	UnavailableResponse   = "Maaf, database error."
	NotUnderstoodResponse = "Maaf, saya kurang paham maksud Anda."
)

// CorpusSource loads the prompt/response table.
type CorpusSource interface {
	Load(ctx context.Context) ([]domain.Pair, error)
	Name() string
}

// Match is the outcome of one lookup.
type Match struct {
	Response string
	Score    float64
	// Index of the best corpus entry, -1 when the engine is not ready.
	Index   int
	Matched bool
}

type Option func(*Engine)

func WithThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Engine is immutable once built and may be queried from many goroutines.
type Engine struct {
	pairs      []domain.Pair
	vectorizer *Vectorizer
	vectors    []sparseVector
	threshold  float64
	ready      bool
	logger     *slog.Logger
}

// Open loads the corpus from src and builds the engine. Load or build
// failures leave the engine not ready; they are logged, never returned.
func Open(ctx context.Context, src CorpusSource, opts ...Option) *Engine {
	e := newEngine(opts)

	pairs, err := src.Load(ctx)
	if err != nil {
		e.logger.Error("loading corpus", "source", src.Name(), "error", err)
		return e
	}

	if err := e.build(pairs); err != nil {
		e.logger.Error("building index", "source", src.Name(), "error", err)
		return e
	}

	e.logger.Info("corpus indexed", "source", src.Name(), "entries", len(e.pairs), "terms", e.vectorizer.Size())
	return e
}

// New builds the engine from in-memory pairs.
func New(pairs []domain.Pair, opts ...Option) *Engine {
	e := newEngine(opts)
	if err := e.build(pairs); err != nil {
		e.logger.Error("building index", "error", err)
	}
	return e
}

func newEngine(opts []Option) *Engine {
	e := &Engine{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

func (e *Engine) build(pairs []domain.Pair) error {
	prompts := make([]string, len(pairs))
	for i, p := range pairs {
		prompts[i] = p.Prompt
	}

	vectorizer, vectors, err := Fit(prompts)
	if err != nil {
		return fmt.Errorf("fitting vectorizer: %w", err)
	}

	e.pairs = append([]domain.Pair(nil), pairs...)
	e.vectorizer = vectorizer
	e.vectors = vectors
	e.ready = true
	return nil
}

// GetResponse returns the stored response closest to query, or one of the
// fixed fallback responses.
func (e *Engine) GetResponse(query string) string {
	return e.Match(query).Response
}

// Match scores query against every corpus entry. Ties keep the lowest index.
func (e *Engine) Match(query string) Match {
	if !e.ready {
		return Match{Response: UnavailableResponse, Index: -1}
	}

	q := e.vectorizer.Transform(query)

	best, bestScore := 0, e.vectors[0].dot(q)
	for i := 1; i < len(e.vectors); i++ {
		if s := e.vectors[i].dot(q); s > bestScore {
			best, bestScore = i, s
		}
	}

	if bestScore > e.threshold {
		return Match{Response: e.pairs[best].Response, Score: bestScore, Index: best, Matched: true}
	}
	return Match{Response: NotUnderstoodResponse, Score: bestScore, Index: best}
}

func (e *Engine) Ready() bool {
	return e.ready
}

// Size returns the number of indexed corpus entries.
func (e *Engine) Size() int {
	return len(e.pairs)
}

func (e *Engine) VocabularySize() int {
	if e.vectorizer == nil {
		return 0
	}
	return e.vectorizer.Size()
}

func (e *Engine) Threshold() float64 {
	return e.threshold
}
