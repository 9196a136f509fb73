package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", "2024-06-03 "+hhmm)
	if err != nil {
		t.Fatalf("bad time %q: %v", hhmm, err)
	}
	return parsed
}

func iv(t *testing.T, start, end string) Interval {
	t.Helper()
	return Interval{Start: at(t, start), End: at(t, end)}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", iv(t, "09:00", "10:00"), iv(t, "11:00", "12:00"), false},
		{"touching endpoints", iv(t, "09:00", "10:00"), iv(t, "10:00", "11:00"), false},
		{"partial", iv(t, "09:00", "10:30"), iv(t, "10:00", "11:00"), true},
		{"contained", iv(t, "09:00", "12:00"), iv(t, "10:00", "11:00"), true},
		{"identical", iv(t, "09:00", "10:00"), iv(t, "09:00", "10:00"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// The primitive must be symmetric.
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestSubtract(t *testing.T) {
	t.Run("middle split", func(t *testing.T) {
		got := iv(t, "09:00", "17:00").Subtract(iv(t, "12:00", "13:00"))
		assert.Equal(t, []Interval{iv(t, "09:00", "12:00"), iv(t, "13:00", "17:00")}, got)
	})

	t.Run("touching boundary does not split", func(t *testing.T) {
		got := iv(t, "09:00", "17:00").Subtract(iv(t, "17:00", "18:00"))
		assert.Equal(t, []Interval{iv(t, "09:00", "17:00")}, got)
	})

	t.Run("zero-length remainder dropped", func(t *testing.T) {
		got := iv(t, "09:00", "17:00").Subtract(iv(t, "09:00", "10:00"))
		assert.Equal(t, []Interval{iv(t, "10:00", "17:00")}, got)
	})

	t.Run("covering removes everything", func(t *testing.T) {
		got := iv(t, "10:00", "11:00").Subtract(iv(t, "09:00", "12:00"))
		assert.Empty(t, got)
	})
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, iv(t, "10:00", "12:00"), iv(t, "09:00", "12:00").Intersect(iv(t, "10:00", "13:00")))
	assert.True(t, iv(t, "09:00", "10:00").Intersect(iv(t, "11:00", "12:00")).IsZero())
}

func TestExtend(t *testing.T) {
	got := iv(t, "10:00", "11:00").Extend(15*time.Minute, 30*time.Minute)
	assert.Equal(t, iv(t, "09:45", "11:30"), got)
}
