// Package linktoken issues and verifies intake-link bearer tokens.
//
// A token is 32 cryptographically random bytes, hex-encoded to 64 characters.
// Only the SHA-256 hex digest is ever persisted; the raw token is handed to
// the caller exactly once at issuance. The last four characters are kept
// alongside the hash so support staff can confirm a link ("...ab12") without
// seeing the secret.
package linktoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// RawTokenLength is the length of a hex-encoded raw token.
const RawTokenLength = 64

// Issue generates a new raw token, its storage hash, and the last-4 display
// fragment. The raw token must be delivered to the recipient and then
// discarded; it cannot be recovered from the hash.
func Issue() (raw, hash, last4 string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", fmt.Errorf("generate random bytes: %w", err)
	}

	raw = hex.EncodeToString(b)
	hash = Hash(raw)
	last4 = raw[len(raw)-4:]

	return raw, hash, last4, nil
}

// Hash computes the SHA-256 digest of a raw token as a hex string.
func Hash(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Verdict is the outcome of verifying a candidate token against a stored link.
type Verdict int

const (
	// VerdictNotFound covers a missing record and a consumed (used) link.
	// Used links deliberately verify as not-found to prevent replay probing.
	VerdictNotFound Verdict = iota
	// VerdictExpired means the hash matched but the TTL elapsed, or the link
	// was already swept into the expired state.
	VerdictExpired
	// VerdictValid means the link is active and inside its TTL.
	VerdictValid
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictExpired:
		return "expired"
	default:
		return "not_found"
	}
}

// Evaluate returns the verdict for a stored link at the given instant.
// The caller has already matched the candidate's hash against storage; a nil
// link means no record matched. Expiry uses an inclusive boundary: a link
// whose ExpiresAt equals now is expired.
func Evaluate(link *domain.IntakeLink, now time.Time) Verdict {
	if link == nil {
		return VerdictNotFound
	}
	switch link.Status {
	case domain.IntakeLinkActive:
		if link.IsExpired(now) {
			return VerdictExpired
		}
		return VerdictValid
	case domain.IntakeLinkExpired:
		return VerdictExpired
	default:
		// used, or any state this code does not know about
		return VerdictNotFound
	}
}
