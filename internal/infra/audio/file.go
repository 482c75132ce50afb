package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/audioconv"
)

const processedSuffix = ".processed"

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".ogg":  true,
	".m4a":  true,
	".webm": true,
}

// FileSource picks up recordings dropped into a directory in name order.
// A .txt file holds a typed question. Consumed files are renamed with a
// .processed suffix.
type FileSource struct {
	dir      string
	interval time.Duration

	mu     sync.Mutex
	seen   map[string]bool
	failed bool
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:      dir,
		interval: 500 * time.Millisecond,
		seen:     make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextCommand(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	// After a failed poll wait one interval before touching the directory again.
	wait := f.takeFailed()
	for {
		if wait {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ticker.C:
			}
		}
		wait = true

		payload, err := f.poll()
		if err != nil || payload != nil {
			return payload, err
		}
	}
}

func (f *FileSource) takeFailed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	failed := f.failed
	f.failed = false
	return failed
}

// poll returns the first usable payload in the directory, or nil.
func (f *FileSource) poll() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		f.failed = true
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		ext := strings.ToLower(filepath.Ext(path))
		if f.seen[path] || (ext != ".txt" && !audioExtensions[ext]) {
			continue
		}

		payload, err := f.consume(path, ext == ".txt")
		if err != nil {
			f.failed = true
			return nil, err
		}
		if payload != nil {
			return payload, nil
		}
	}

	return nil, nil
}

// consume reads and retires one file. Blank text and unrecognized audio
// yield nil. An unreadable file is reported once and then skipped.
func (f *FileSource) consume(path string, isText bool) ([]byte, error) {
	f.seen[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	_ = os.Rename(path, path+processedSuffix)

	if isText {
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, nil
		}
		return []byte(domain.TextCommandPrefix + text), nil
	}

	if audioconv.Sniff(data) == audioconv.FormatUnknown {
		return nil, nil
	}
	return data, nil
}
