package scanning

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MaxInlineSize is the largest file that can be sent inline with a model
// request. Gemini rejects inline payloads above 20MB.
const MaxInlineSize = 20 << 20

// ErrTooLarge is returned when a file exceeds MaxInlineSize
var ErrTooLarge = errors.New("file exceeds the 20MB inline limit")

// EncodeBase64 converts captured bytes to the transport form sent to the model
func EncodeBase64(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("no data to encode")
	}
	if len(data) > MaxInlineSize {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	return NormalizeBase64(base64.StdEncoding.EncodeToString(data)), nil
}

// NormalizeBase64 strips any data URL prefix and pads the payload with '='
// to a multiple of 4 characters
func NormalizeBase64(s string) string {
	if _, data, ok := ParseDataURL(s); ok {
		s = data
	}
	s = strings.TrimSpace(s)
	if rem := len(s) % 4; rem > 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return s
}

// DecodeBase64 normalizes and decodes a transport payload
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(NormalizeBase64(s))
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	return data, nil
}

// ParseDataURL splits a "data:<mime>;base64,<data>" URL. ok is false when s
// is not a data URL.
func ParseDataURL(s string) (mimeType string, data string, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", "", false
	}
	header, data, found := strings.Cut(s, ",")
	if !found {
		return "", "", false
	}
	mimeType = strings.TrimPrefix(header, "data:")
	mimeType = strings.TrimSuffix(mimeType, ";base64")
	return mimeType, data, true
}
