package utils

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReferralCode returns an unambiguous upper-case code of the given length.
func GenerateReferralCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, v := range b {
		sb.WriteByte(referralAlphabet[int(v)%len(referralAlphabet)])
	}
	return sb.String(), nil
}

// NewReference builds a trade or ledger reference such as GCT-1f0c2a9e4b7d.
func NewReference(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:16])
}
