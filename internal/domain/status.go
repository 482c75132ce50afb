package domain

type Status string

const (
	StatusReady       Status = "ready"
	StatusListening   Status = "listening"
	StatusProcessing  Status = "processing"
	StatusSpeaking    Status = "speaking"
	StatusTimeout     Status = "timeout"
	StatusUnclear     Status = "unclear"
	StatusNetworkDown Status = "network_error"
)

var statusLabels = map[Status]string{
	StatusReady:       "Siap.",
	StatusListening:   "Mendengarkan...",
	StatusProcessing:  "Memproses...",
	StatusSpeaking:    "Berbicara...",
	StatusTimeout:     "Waktu habis. Coba lagi.",
	StatusUnclear:     "Suara tidak jelas.",
	StatusNetworkDown: "Error koneksi internet.",
}

var statusColors = map[Status]string{
	StatusReady:       "gray",
	StatusListening:   "red",
	StatusProcessing:  "blue",
	StatusSpeaking:    "green",
	StatusTimeout:     "orange",
	StatusUnclear:     "orange",
	StatusNetworkDown: "red",
}

// Label returns the user-facing text shown in the status line.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Color is a hint for renderers; it is one of gray, red, blue, green, orange.
func (s Status) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "gray"
}
