package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// RandomHex generates a random hexadecimal string of length 2n.
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RandomCode generates a random string of length n drawn from the given
// alphabet, using crypto/rand.
func RandomCode(n int, alphabet string) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = alphabet[0]
			continue
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}
