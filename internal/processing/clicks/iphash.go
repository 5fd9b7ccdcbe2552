package clicks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const defaultClientIP = "0.0.0.0"

// IPHasher turns client addresses into fixed-length hex digests. With a salt
// it uses HMAC-SHA-256 so digests cannot be reversed by enumerating the
// IPv4 space.
type IPHasher struct {
	salt []byte
}

func NewIPHasher(salt string) *IPHasher {
	if salt == "" {
		return &IPHasher{}
	}
	return &IPHasher{salt: []byte(salt)}
}

func (h *IPHasher) Hash(ip string) string {
	if len(h.salt) == 0 {
		sum := sha256.Sum256([]byte(ip))
		return hex.EncodeToString(sum[:])
	}

	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// ClientIP returns the first address of an X-Forwarded-For value.
func ClientIP(forwardedFor string) string {
	first, _, _ := strings.Cut(forwardedFor, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return defaultClientIP
	}
	return first
}
