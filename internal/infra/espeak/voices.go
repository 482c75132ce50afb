package espeak

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Voice is one row of `espeak-ng --voices`.
type Voice struct {
	Priority int
	Language string
	Gender   string
	Name     string
	File     string
}

// ParseVoices reads the table printed by `espeak-ng --voices`. The header
// row and malformed rows are skipped.
func ParseVoices(r io.Reader) ([]Voice, error) {
	var voices []Voice

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 {
			continue
		}

		priority, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		voices = append(voices, Voice{
			Priority: priority,
			Language: fields[1],
			Gender:   fields[2],
			Name:     fields[3],
			File:     fields[4],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return voices, nil
}

// SelectVoice returns the first voice whose name or language contains hint,
// ignoring case.
func SelectVoice(voices []Voice, hint string) (Voice, bool) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return Voice{}, false
	}

	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Name), hint) || strings.EqualFold(v.Language, hint) {
			return v, true
		}
	}
	return Voice{}, false
}
