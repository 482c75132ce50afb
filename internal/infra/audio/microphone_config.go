package audio

import "time"

type MicrophoneConfig struct {
	SampleRate int
	// ListenTimeout bounds the wait for speech to start after a trigger.
	ListenTimeout time.Duration
	// PhraseLimit bounds the length of one recording.
	PhraseLimit time.Duration
	// SilenceThreshold is the peak amplitude below which a frame is silence.
	SilenceThreshold int16
	// PauseDuration of trailing silence ends the phrase.
	PauseDuration time.Duration
}

func (c *MicrophoneConfig) setDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.ListenTimeout == 0 {
		c.ListenTimeout = 5 * time.Second
	}
	if c.PhraseLimit == 0 {
		c.PhraseLimit = 5 * time.Second
	}
	if c.SilenceThreshold == 0 {
		c.SilenceThreshold = 500
	}
	if c.PauseDuration == 0 {
		c.PauseDuration = 800 * time.Millisecond
	}
}

// isSilent reports whether every sample of frame stays under threshold.
func isSilent(frame []int16, threshold int16) bool {
	for _, sample := range frame {
		if sample > threshold || sample < -threshold {
			return false
		}
	}
	return true
}

// framesFor converts a duration into a count of frames of the given size.
func framesFor(d time.Duration, sampleRate, frameSize int) int {
	n := int(d.Seconds() * float64(sampleRate) / float64(frameSize))
	if n < 1 {
		n = 1
	}
	return n
}
