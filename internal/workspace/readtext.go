package workspace

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ReadText reads a file as text. Content that is not valid UTF-8 falls back
// to a Latin-1 decode so legacy notes still classify instead of erroring.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String(), nil
}

// ContentLength measures classification signal as the rune count of the
// trimmed content, so multi-byte text is not over-counted.
func ContentLength(content string) int {
	return utf8.RuneCountInString(strings.TrimSpace(content))
}
