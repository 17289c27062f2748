package cache

import (
	"testing"
	"time"

	"filewarden/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFingerprint(digest string) models.Fingerprint {
	return models.Fingerprint{Kind: models.TargetKindFile, Digest: digest, SizeBytes: 10}
}

func testVerdict(digest string, level models.RiskLevel) models.Verdict {
	return models.Verdict{
		Fingerprint: testFingerprint(digest),
		Level:       level,
		Timestamp:   time.Now(),
	}
}

func TestVerdictCache_PutGet(t *testing.T) {
	c := NewVerdictCache(8, time.Minute, zerolog.Nop())

	v := testVerdict("abc", models.RiskSafe)
	c.Put(v)

	got, ok := c.Get(testFingerprint("abc"))
	require.True(t, ok)
	assert.Equal(t, models.RiskSafe, got.Level)
	assert.Equal(t, "abc", got.Fingerprint.Digest)
}

func TestVerdictCache_MissForUnknownKey(t *testing.T) {
	c := NewVerdictCache(8, time.Minute, zerolog.Nop())

	_, ok := c.Get(testFingerprint("never-stored"))
	assert.False(t, ok)
}

func TestVerdictCache_NeverStoresUnknown(t *testing.T) {
	c := NewVerdictCache(8, time.Minute, zerolog.Nop())

	c.Put(testVerdict("abc", models.RiskUnknown))

	_, ok := c.Get(testFingerprint("abc"))
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestVerdictCache_TTLExpiry(t *testing.T) {
	c := NewVerdictCache(8, 20*time.Millisecond, zerolog.Nop())

	c.Put(testVerdict("abc", models.RiskSuspicious))
	_, ok := c.Get(testFingerprint("abc"))
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok = c.Get(testFingerprint("abc"))
	assert.False(t, ok)
}

func TestVerdictCache_CapacityEviction(t *testing.T) {
	c := NewVerdictCache(2, time.Minute, zerolog.Nop())

	c.Put(testVerdict("a", models.RiskSafe))
	c.Put(testVerdict("b", models.RiskSafe))
	c.Put(testVerdict("c", models.RiskSafe))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(testFingerprint("a"))
	assert.False(t, ok)
	_, ok = c.Get(testFingerprint("c"))
	assert.True(t, ok)
}

func TestVerdictCache_Invalidate(t *testing.T) {
	c := NewVerdictCache(8, time.Minute, zerolog.Nop())

	c.Put(testVerdict("abc", models.RiskDangerous))
	c.Invalidate(testFingerprint("abc"))

	_, ok := c.Get(testFingerprint("abc"))
	assert.False(t, ok)
}
