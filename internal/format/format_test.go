package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty string unchanged", in: "", want: ""},
		{name: "short string unchanged", in: "short", want: "short"},
		{name: "exactly at limit unchanged", in: "123456789012345", want: "123456789012345"},
		{name: "one over limit truncated", in: "1234567890123456", want: "123456789012345…"},
		{name: "long string truncated", in: "a very long subject line indeed", want: "a very long sub…"},
		{name: "multi-byte runes counted as one", in: "Добрый день, коллеги", want: "Добрый день, ко…"},
		{name: "cyrillic at limit unchanged", in: "Привет, коллеги", want: "Привет, коллеги"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in))
		})
	}
}

func TestTruncate_Idempotent(t *testing.T) {
	once := Truncate("this subject is far too long to display")
	assert.Equal(t, once, Truncate(once))
}

func TestTimeIn(t *testing.T) {
	// 2023-11-14 22:13:20 UTC
	const instant = int64(1700000000)

	assert.Equal(t, "22:13 14.11.2023", TimeIn(instant, time.UTC))

	msk := time.FixedZone("MSK", 3*60*60)
	assert.Equal(t, "01:13 15.11.2023", TimeIn(instant, msk))
}

func TestISOIn_RoundTripsAgainstDisplay(t *testing.T) {
	const instant = int64(1700000000)
	msk := time.FixedZone("MSK", 3*60*60)

	iso := ISOIn(instant, msk)
	parsed, err := time.Parse(time.RFC3339, iso)
	require.NoError(t, err)

	// The machine-readable attribute and the display text must
	// reference the same instant.
	assert.Equal(t, instant, parsed.Unix())
	assert.Equal(t, TimeIn(instant, msk), TimeIn(parsed.Unix(), msk))
}

func TestTimeIn_Deterministic(t *testing.T) {
	const instant = int64(1234567890)
	first := TimeIn(instant, time.UTC)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, TimeIn(instant, time.UTC))
	}
}
