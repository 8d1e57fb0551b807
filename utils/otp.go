package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateOTP returns a 6-digit, zero-padded one-time code from a CSPRNG.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// OTPHasher keys one-time codes so a leaked database does not reveal them.
type OTPHasher struct {
	key []byte
}

func NewOTPHasher(secret string) *OTPHasher {
	return &OTPHasher{key: []byte(secret)}
}

// Hash returns the hex HMAC-SHA256 of code.
func (h *OTPHasher) Hash(code string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal compares a code against a stored hash in constant time.
func (h *OTPHasher) Equal(code, stored string) bool {
	return hmac.Equal([]byte(h.Hash(code)), []byte(stored))
}
