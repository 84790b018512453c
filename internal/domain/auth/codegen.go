package auth

import (
	"crypto/rand"
	"math/big"
)

const (
	idAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	accountIDLen = 6
)

func randomString(alphabet string, length int) string {
	b := make([]byte, length)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// generateAccountID returns an id such as u-k3f9x2.
func generateAccountID() string {
	return "u-" + randomString(idAlphabet, accountIDLen)
}

// generateReferralCode returns EARN followed by four digits, 1000-9999.
func generateReferralCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		panic(err)
	}
	return "EARN" + big.NewInt(1000+n.Int64()).String()
}
