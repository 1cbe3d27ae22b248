package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	now := time.Date(2024, 2, 10, 8, 15, 42, 0, time.UTC)

	tests := []struct {
		name  string
		date  string
		clock string
		want  time.Time
	}{
		{"date and time", "2024-03-01", "14:30", time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)},
		{"seconds are dropped", "2024-03-01", "14:30:59", time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)},
		{"missing time is start of day", "2024-03-01", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"missing date is today", "", "14:30", time.Date(2024, 2, 10, 14, 30, 0, 0, time.UTC)},
		{"both missing is start of today", "", "", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"surrounding space is ignored", " 2024-03-01 ", " 09:05 ", time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compose(tt.date, tt.clock, now, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestComposeUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// Still the 10th in UTC, already the 11th in Tokyo
	now := time.Date(2024, 2, 10, 20, 0, 0, 0, time.UTC)

	got, err := Compose("", "07:00", now, tokyo)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 11, 7, 0, 0, 0, tokyo), got)
	assert.Equal(t, time.Date(2024, 2, 10, 22, 0, 0, 0, time.UTC), got.UTC())
}

func TestComposeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		date, clock string
		field       FieldName
	}{
		{"01/03/2024", "14:30", FieldDate},
		{"2024-02-30", "14:30", FieldDate},
		{"2024-03-01", "2:30pm", FieldTime},
		{"2024-03-01", "25:00", FieldTime},
	}
	for _, tt := range tests {
		_, err := Compose(tt.date, tt.clock, time.Now(), time.UTC)
		var ce *CompositionError
		require.ErrorAs(t, err, &ce, "%q %q", tt.date, tt.clock)
		assert.Equal(t, tt.field, ce.Field)
	}
}

func TestDecompose(t *testing.T) {
	date, clock := Decompose(time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "2024-03-01", date)
	assert.Equal(t, "14:30", clock)

	date, clock = Decompose(time.Time{}, time.UTC)
	assert.Empty(t, date)
	assert.Empty(t, clock)
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	zones := []*time.Location{time.UTC, time.FixedZone("EST", -5*60*60), time.FixedZone("IST", 5*60*60+30*60)}
	stamps := []time.Time{
		time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 7, 4, 6, 7, 0, 0, time.UTC),
	}

	for _, loc := range zones {
		for _, ts := range stamps {
			date, clock := Decompose(ts, loc)
			got, err := Compose(date, clock, time.Now(), loc)
			require.NoError(t, err)
			assert.True(t, ts.Equal(got), "%s: %v -> %s %s -> %v", loc, ts, date, clock, got)
		}
	}
}
