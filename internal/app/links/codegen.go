package links

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	codeLen      = 7
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomCodeGenerator draws fixed-length codes uniformly from the 62-symbol
// alphanumeric alphabet.
type RandomCodeGenerator struct {
	src io.Reader
}

func NewRandomCodeGenerator() RandomCodeGenerator {
	return RandomCodeGenerator{src: rand.Reader}
}

var _ CodeGenerator = RandomCodeGenerator{}

func (g RandomCodeGenerator) Generate() (string, error) {
	src := g.src
	if src == nil {
		src = rand.Reader
	}

	alphaLen := len(codeAlphabet)
	// Bytes at or above cutoff are rejected so every symbol keeps the same odds.
	cutoff := (256 / alphaLen) * alphaLen

	out := make([]byte, codeLen)
	filled := 0

	var buf [32]byte
	for filled < codeLen {
		if _, err := io.ReadFull(src, buf[:]); err != nil {
			return "", fmt.Errorf("rand read: %w", err)
		}

		for _, b := range buf {
			if filled >= codeLen {
				break
			}

			if int(b) >= cutoff {
				continue
			}

			out[filled] = codeAlphabet[int(b)%alphaLen]
			filled++
		}
	}

	return string(out), nil
}
