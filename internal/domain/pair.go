package domain

// Pair is one canned exchange of the knowledge base.
type Pair struct {
	Prompt   string
	Response string
}
