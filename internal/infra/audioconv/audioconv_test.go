package audioconv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/infra/audioconv"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want audioconv.Format
	}{
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), audioconv.FormatWAV},
		{"riff but not wave", []byte("RIFF\x24\x00\x00\x00AVI LIST"), audioconv.FormatUnknown},
		{"ogg", []byte("OggS\x00\x02"), audioconv.FormatOgg},
		{"mp3 id3", []byte("ID3\x04\x00"), audioconv.FormatMP3},
		{"mp3 frame", []byte{0xFF, 0xFB, 0x90, 0x64}, audioconv.FormatMP3},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F}, audioconv.FormatWebM},
		{"m4a", []byte("\x00\x00\x00\x20ftypM4A "), audioconv.FormatM4A},
		{"text", []byte("fake audio data"), audioconv.FormatUnknown},
		{"empty", nil, audioconv.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, audioconv.Sniff(tt.data))
		})
	}
}

func TestFormat_Filename(t *testing.T) {
	assert.Equal(t, "audio.ogg", audioconv.FormatOgg.Filename())
	assert.Equal(t, "audio.wav", audioconv.FormatUnknown.Filename())
}

func TestEncodeDecodeWAV(t *testing.T) {
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = 16384
	}

	data, err := audioconv.EncodeWAV(samples, 16000)
	require.NoError(t, err)
	assert.Equal(t, audioconv.FormatWAV, audioconv.Sniff(data))
	assert.Len(t, data, 44+len(samples)*2)

	pcm, err := audioconv.DecodePCM16k(data)
	require.NoError(t, err)
	require.Len(t, pcm, 1600)
	assert.InDelta(t, 0.5, pcm[0], 1e-6)
	assert.InDelta(t, 0.5, pcm[len(pcm)-1], 1e-6)
}

func TestDecodeWAV_Resamples(t *testing.T) {
	samples := make([]int16, 800)
	for i := range samples {
		samples[i] = -8192
	}

	data, err := audioconv.EncodeWAV(samples, 8000)
	require.NoError(t, err)

	pcm, err := audioconv.DecodePCM16k(data)
	require.NoError(t, err)
	assert.Len(t, pcm, 1600)
	assert.InDelta(t, -0.25, pcm[100], 1e-6)
}

func TestDecodePCM16k_Unsupported(t *testing.T) {
	_, err := audioconv.DecodePCM16k([]byte("not audio at all"))
	assert.Error(t, err)

	_, err = audioconv.DecodePCM16k([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x00})
	assert.ErrorContains(t, err, "webm")
}

func TestEncodeWAV_InvalidRate(t *testing.T) {
	_, err := audioconv.EncodeWAV([]int16{1, 2, 3}, 0)
	assert.Error(t, err)
}
