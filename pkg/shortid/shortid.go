// Package shortid generates random URL-safe identifiers.
package shortid

import (
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLength is the length of generated short ids.
const DefaultLength = 8

var ErrInvalidLength = errors.New("length must be positive")

// Generate returns a random string of the given length drawn from the
// nanoid alphabet (A-Z, a-z, 0-9, '_' and '-').
func Generate(length int) (string, error) {
	const op = "shortid.Generate"

	if length <= 0 {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidLength)
	}

	id, err := gonanoid.New(length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate id: %w", op, err)
	}

	return id, nil
}
