// Package shortcode generates the opaque codes bookmarks are redirected by.
// Generators are safe for concurrent use.
package shortcode

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	DefaultLength = 6
	MinLength     = 4
	MaxLength     = 32

	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Generator produces candidate short codes. Uniqueness is enforced by the
// store; callers retry on collision.
type Generator interface {
	Generate() (string, error)
}

type base62Generator struct {
	length int
}

// NewBase62 returns a generator of length-character base62 codes.
// Lengths outside [MinLength, MaxLength] fall back to DefaultLength.
func NewBase62(length int) Generator {
	if length < MinLength || length > MaxLength {
		length = DefaultLength
	}
	return &base62Generator{length: length}
}

func (g *base62Generator) Generate() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, g.length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Join(errors.New("read random source"), err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// Valid reports whether code could have been produced by a base62 generator.
// The redirect handler uses it to reject obviously foreign paths before hitting storage.
func Valid(code string) bool {
	if len(code) < MinLength || len(code) > MaxLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
