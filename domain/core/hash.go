package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short is the first 12 hex digits, enough to tell datasets apart in logs
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeTableHash fingerprints tabular content. Cells are length-prefixed so
// that shifting text between neighbouring cells changes the hash.
func ComputeTableHash(headers []string, rows [][]any) Hash {
	h := sha256.New()
	write := func(s string) {
		fmt.Fprintf(h, "%d:%s", len(s), s)
	}
	for _, name := range headers {
		write(name)
	}
	for _, row := range rows {
		h.Write([]byte{'\n'})
		for _, cell := range row {
			if cell == nil {
				write("")
				continue
			}
			write(fmt.Sprint(cell))
		}
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
