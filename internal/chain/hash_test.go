package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationDigestDeterministic(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	a := ApplicationDigest(42, 7, ts)
	b := ApplicationDigest(42, 7, ts)

	assert.Equal(t, a, b)
	assert.Len(t, a, 66)
	assert.Equal(t, "0x", a[:2])
}

func TestApplicationDigestTimezoneInsensitive(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	manila := time.FixedZone("PHT", 8*3600)

	assert.Equal(t, ApplicationDigest(42, 7, ts), ApplicationDigest(42, 7, ts.In(manila)))
}

func TestApplicationDigestFieldSensitivity(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	base := ApplicationDigest(42, 7, ts)

	assert.NotEqual(t, base, ApplicationDigest(43, 7, ts))
	assert.NotEqual(t, base, ApplicationDigest(42, 8, ts))
	assert.NotEqual(t, base, ApplicationDigest(42, 7, ts.Add(time.Second)))
}

func TestAwardingDigest(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	a := AwardingDigest(5, 42, 250000, ts)
	assert.Equal(t, a, AwardingDigest(5, 42, 250000, ts))
	assert.Len(t, a, 66)

	assert.NotEqual(t, a, AwardingDigest(6, 42, 250000, ts))
	assert.NotEqual(t, a, AwardingDigest(5, 42, 250001, ts))

	// An awarding digest never collides with the application digest for
	// the same row, even with matching leading fields.
	assert.NotEqual(t, a, ApplicationDigest(5, 42, ts))
}
