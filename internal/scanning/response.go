package scanning

import (
	"errors"
	"strings"
)

var errNoResponse = errors.New("no response from model")

// cleanResponse trims the model reply and removes a markdown code fence
// wrapping the entire answer. Fences inside the text are left alone.
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	// Drop the info string ("markdown", "md", ...) on the opening fence line
	firstLine, rest, found := strings.Cut(inner, "\n")
	if !found {
		return strings.TrimSpace(inner)
	}
	if strings.ContainsAny(strings.TrimSpace(firstLine), " \t") {
		return strings.TrimSpace(inner)
	}
	if strings.Contains(rest, "```") {
		// More than one fenced block; the reply is not a single wrapper
		return text
	}
	return strings.TrimSpace(rest)
}

// transcriptOrDefault substitutes the default transcript for an empty reply
func transcriptOrDefault(text string) string {
	text = cleanResponse(text)
	if text == "" {
		return NoTextExtracted
	}
	return text
}

// analysisOrError rejects an empty analysis so nothing blank is ever stored
func analysisOrError(text string) (string, error) {
	text = cleanResponse(text)
	if text == "" {
		return "", errors.New("empty analysis from model")
	}
	return text, nil
}
