// Package refcode generates the opaque, URL-safe identifiers used for
// referral codes and referral record ids. Codes combine a millisecond
// timestamp with a random suffix so concurrent callers never need a
// central allocator.
package refcode

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generate returns a new referral code, e.g. "ref_m1x2k9ab_4fq81z".
func Generate() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return "ref_" + ts + "_" + randomSuffix(6)
}

// NewID returns a new referral record id, e.g. "ref_1735689600000_k3df".
func NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return "ref_" + ts + "_" + randomSuffix(4)
}

// Link composes the shareable referral URL for a campaign.
func Link(baseURL, campaignSlug, code string) string {
	return strings.TrimRight(baseURL, "/") + "/" + campaignSlug + "/refer?ref=" + code
}

func randomSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(base36)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to the clock rather than handing out an error.
			b.WriteByte(base36[time.Now().UnixNano()%36])
			continue
		}
		b.WriteByte(base36[idx.Int64()])
	}
	return b.String()
}
