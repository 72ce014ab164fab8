// Package daily derives the shared daily challenge and stores its results.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// Challenge is one UTC day's puzzle.
type Challenge struct {
	Date        string                 // YYYY-MM-DD
	SecretIndex int                    // position in the combination universe
	Secret      mastermind.Combination // never sent to players while playing
}

// For returns the challenge of t's UTC day.
func For(t time.Time, salt string) Challenge {
	idx := SecretIndex(t, salt)
	return Challenge{Date: DateKey(t), SecretIndex: idx, Secret: mastermind.FromIndex(idx)}
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SecretIndex is HMAC-SHA256(salt, YYYY-MM-DD) mod mastermind.Size, read from
// the first 8 bytes of the MAC.
func SecretIndex(t time.Time, salt string) int {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(DateKey(t)))
	n := binary.BigEndian.Uint64(mac.Sum(nil)[:8])
	return int(n % mastermind.Size)
}
