package matcher

import (
	"errors"
	"math"
	"sort"
)

var (
	ErrNoDocuments     = errors.New("no documents to fit")
	ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no terms")
)

// weight is one non-zero dimension of a sparse vector.
type weight struct {
	dim   int
	value float64
}

// sparseVector holds non-zero weights ordered by dimension.
type sparseVector []weight

func (v sparseVector) dot(q map[int]float64) float64 {
	var sum float64
	for _, w := range v {
		if x, ok := q[w.dim]; ok {
			sum += w.value * x
		}
	}
	return sum
}

// Vectorizer turns text into L2-normalized TF-IDF vectors over a vocabulary
// fixed at fit time.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// Fit builds the vocabulary and IDF table from docs and returns the vector of
// every document in input order.
func Fit(docs []string) (*Vectorizer, []sparseVector, error) {
	if len(docs) == 0 {
		return nil, nil, ErrNoDocuments
	}

	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := Tokenize(doc)
		tokenized[i] = tokens

		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	if len(df) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	for dim, t := range terms {
		v.vocabulary[t] = dim
		// smoothed idf: every term behaves as if seen in one extra document
		v.idf[dim] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	vectors := make([]sparseVector, len(docs))
	for i, tokens := range tokenized {
		vectors[i] = toSparse(v.weigh(tokens))
	}

	return v, vectors, nil
}

// Transform projects text into the fitted space. Terms outside the
// vocabulary are ignored; the result is empty when nothing is known.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	return v.weigh(Tokenize(text))
}

// Size returns the number of dimensions.
func (v *Vectorizer) Size() int {
	return len(v.idf)
}

func (v *Vectorizer) weigh(tokens []string) map[int]float64 {
	out := make(map[int]float64)
	for _, t := range tokens {
		if dim, ok := v.vocabulary[t]; ok {
			out[dim]++
		}
	}

	var norm float64
	for dim, tf := range out {
		w := tf * v.idf[dim]
		out[dim] = w
		norm += w * w
	}
	if norm == 0 {
		return out
	}

	norm = math.Sqrt(norm)
	for dim := range out {
		out[dim] /= norm
	}
	return out
}

func toSparse(m map[int]float64) sparseVector {
	v := make(sparseVector, 0, len(m))
	for dim, x := range m {
		v = append(v, weight{dim: dim, value: x})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].dim < v[j].dim })
	return v
}
