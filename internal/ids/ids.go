// Package ids generates the identifiers and secrets used across Bloomy.
package ids

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// ULID returns a lexicographically sortable identifier.
func ULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// UserID returns a random UUID v4.
func UserID() string {
	return uuid.NewString()
}

// AddressID returns an address identifier of the form addr_<ulid>.
func AddressID() string {
	return "addr_" + ULID()
}

// PaymentIntentID returns an intent identifier of the form pi_<ulid>.
func PaymentIntentID() string {
	return "pi_" + ULID()
}

const orderSuffixLen = 5

var orderSuffixSpace = big.NewInt(36 * 36 * 36 * 36 * 36)

// OrderID returns an identifier of the form BLM-<year>-<5 uppercase base36>.
func OrderID(at time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, orderSuffixSpace)
	if err != nil {
		return "", fmt.Errorf("generate order id: %w", err)
	}
	suffix := strconv.FormatInt(n.Int64(), 36)
	for len(suffix) < orderSuffixLen {
		suffix = "0" + suffix
	}
	return fmt.Sprintf("BLM-%d-%s", at.Year(), strings.ToUpper(suffix)), nil
}

// Token returns 32 random bytes, hex encoded.
func Token() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 digest of a token. Only digests are stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
