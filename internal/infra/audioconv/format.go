// Package audioconv detects, decodes and encodes the audio payloads that
// flow between capture and speech recognition.
package audioconv

import "bytes"

type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOgg     Format = "ogg"
	FormatWebM    Format = "webm"
	FormatM4A     Format = "m4a"
)

// Sniff identifies a payload by its leading magic bytes.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOgg
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatWebM
	case len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")):
		return FormatM4A
	}
	return FormatUnknown
}

// Filename returns a name with the right extension for upload APIs that
// infer the codec from it.
func (f Format) Filename() string {
	if f == FormatUnknown {
		return "audio.wav"
	}
	return "audio." + string(f)
}
