package espeak_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/infra/espeak"
)

// fakeEspeak writes a shell script that prints a voice table for --voices
// and otherwise appends its arguments to a log file.
func fakeEspeak(t *testing.T) (binary, argsLog string) {
	t.Helper()

	dir := t.TempDir()
	binary = filepath.Join(dir, "espeak-ng")
	argsLog = filepath.Join(dir, "args.log")

	script := `#!/bin/sh
if [ "$1" = "--voices" ]; then
cat <<'TABLE'
Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  en              --/M      English            gmw/en
 5  id              --/M      Indonesian         poz/id
TABLE
exit 0
fi
echo "$@" >> "` + argsLog + `"
`
	require.NoError(t, os.WriteFile(binary, []byte(script), 0755))
	return binary, argsLog
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSpeaker_SelectsHintedVoice(t *testing.T) {
	binary, argsLog := fakeEspeak(t)

	s := espeak.NewSpeaker(context.Background(), espeak.Config{Binary: binary}, discardLogger())
	assert.Equal(t, "id", s.Voice())

	require.NoError(t, s.Speak(context.Background(), "Saya baik, terima kasih"))

	data, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	assert.Equal(t, "-s 145 -v id -- Saya baik, terima kasih", strings.TrimSpace(string(data)))
}

func TestSpeaker_FallsBackToDefaultVoice(t *testing.T) {
	binary, argsLog := fakeEspeak(t)

	s := espeak.NewSpeaker(context.Background(), espeak.Config{Binary: binary, VoiceHint: "swahili", Rate: 170}, discardLogger())
	assert.Empty(t, s.Voice())

	require.NoError(t, s.Speak(context.Background(), "halo"))

	data, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	assert.Equal(t, "-s 170 -- halo", strings.TrimSpace(string(data)))
}

func TestSpeaker_EmptyTextIsNoop(t *testing.T) {
	binary, argsLog := fakeEspeak(t)

	s := espeak.NewSpeaker(context.Background(), espeak.Config{Binary: binary}, discardLogger())
	require.NoError(t, s.Speak(context.Background(), "  "))

	assert.NoFileExists(t, argsLog)
}

func TestSpeaker_MissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-espeak")

	s := espeak.NewSpeaker(context.Background(), espeak.Config{Binary: missing}, discardLogger())
	assert.Empty(t, s.Voice())
	assert.Error(t, s.Speak(context.Background(), "halo"))
}
