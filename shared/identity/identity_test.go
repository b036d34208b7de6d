package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var jst = time.FixedZone("JST", 9*60*60)

func TestDeriveIdentity(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, jst)

	t.Run("deterministic within a day", func(t *testing.T) {
		first := DeriveIdentity("203.0.113.7", 1, day)
		second := DeriveIdentity("203.0.113.7", 1, day.Add(11*time.Hour))
		assert.Len(t, first, 8)
		assert.Equal(t, first, second)
	})

	t.Run("differs by board", func(t *testing.T) {
		assert.NotEqual(t, DeriveIdentity("203.0.113.7", 1, day), DeriveIdentity("203.0.113.7", 2, day))
	})

	t.Run("differs by day", func(t *testing.T) {
		assert.NotEqual(t, DeriveIdentity("203.0.113.7", 1, day), DeriveIdentity("203.0.113.7", 1, day.AddDate(0, 0, 1)))
	})

	t.Run("differs by address", func(t *testing.T) {
		assert.NotEqual(t, DeriveIdentity("203.0.113.7", 1, day), DeriveIdentity("203.0.113.8", 1, day))
	})

	t.Run("text safe alphabet", func(t *testing.T) {
		for _, addr := range []string{"1.1.1.1", "::1", "10.0.0.254", "2001:db8::2"} {
			id := DeriveIdentity(addr, 3, day)
			assert.Len(t, id, 8)
			assert.NotContains(t, id, "+")
			assert.NotContains(t, id, "/")
			assert.NotContains(t, id, "=")
		}
	})
}

func TestIdentityDeriverUsesLocation(t *testing.T) {
	// 2024-05-01 23:30 UTC is already 2024-05-02 in JST.
	instant := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	d := NewIdentityDeriver(FixedClock(instant), jst)

	assert.Equal(t, DeriveIdentity("198.51.100.1", 1, time.Date(2024, 5, 2, 0, 0, 0, 0, jst)), d.Derive("198.51.100.1", 1))
	assert.NotEqual(t, DeriveIdentity("198.51.100.1", 1, instant), d.Derive("198.51.100.1", 1))
}

func TestDeriveTripcode(t *testing.T) {
	a := DeriveTripcode("pw1")
	assert.Len(t, a, 10)
	assert.Equal(t, a, DeriveTripcode("pw1"))
	assert.NotEqual(t, a, DeriveTripcode("pw2"))
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "=")
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantTrip string
	}{
		{"name with secret", "Alice#pw1", "Alice", DeriveTripcode("pw1")},
		{"plain name", "Alice", "Alice", ""},
		{"empty input", "", "", ""},
		{"secret only", "#pw1", "", DeriveTripcode("pw1")},
		{"split at first separator", "Alice#pw#1", "Alice", DeriveTripcode("pw#1")},
		{"empty secret", "Alice#", "Alice", ""},
		{"typed trip mark is neutralised", "◆fake", "◇fake", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, trip := ParseName(tt.input)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantTrip, trip)
		})
	}
}
