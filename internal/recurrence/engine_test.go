package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_ExpandWeekly(t *testing.T) {
	engine := NewEngine()

	// Monday 2024-01-01 09:00, Mon+Wed until 2024-01-15 inclusive.
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rule := Rule{
		Weekdays:        []time.Weekday{time.Monday, time.Wednesday},
		Until:           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}
	tmpl := Template{Title: "Math", Color: "#4F46E5", Subject: "subj-1"}

	occurrences, err := engine.Expand(start, rule, tmpl)
	require.NoError(t, err)
	require.Len(t, occurrences, 5)

	wantDays := []int{1, 3, 8, 10, 15}
	for i, occ := range occurrences {
		assert.Equal(t, time.January, occ.Start.Month())
		assert.Equal(t, wantDays[i], occ.Start.Day())
		assert.Equal(t, 9, occ.Start.Hour())
		assert.Equal(t, 0, occ.Start.Minute())
		assert.Equal(t, 10, occ.End.Hour())
		assert.Equal(t, time.Hour, occ.End.Sub(occ.Start))

		assert.Equal(t, "Math", occ.Title)
		assert.Equal(t, "#4F46E5", occ.Color)
		assert.Equal(t, "subj-1", occ.Subject)
		assert.False(t, occ.AllDay)
	}
}

func TestEngine_ExpandProperties(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name     string
		start    time.Time
		weekdays []time.Weekday
		until    time.Time
		duration int
	}{
		{
			name:     "single weekday over two months",
			start:    time.Date(2024, 2, 2, 14, 30, 0, 0, time.UTC), // Friday
			weekdays: []time.Weekday{time.Friday},
			until:    time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
			duration: 45,
		},
		{
			name:     "all weekdays",
			start:    time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC),
			weekdays: []time.Weekday{0, 1, 2, 3, 4, 5, 6},
			until:    time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			duration: 30,
		},
		{
			name:     "start weekday not selected",
			start:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), // Monday
			weekdays: []time.Weekday{time.Tuesday},
			until:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			duration: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occurrences, err := engine.Expand(tt.start, Rule{
				Weekdays:        tt.weekdays,
				Until:           tt.until,
				DurationMinutes: tt.duration,
			}, Template{Title: "x"})
			require.NoError(t, err)

			selected := make(map[time.Weekday]bool)
			for _, wd := range tt.weekdays {
				selected[wd] = true
			}

			// Expected count: matching calendar days in the inclusive range.
			want := 0
			for day := tt.start; !day.After(tt.until.Add(24*time.Hour - time.Second)); day = day.AddDate(0, 0, 1) {
				if selected[day.Weekday()] {
					want++
				}
			}
			assert.Len(t, occurrences, want)

			startDay := time.Date(tt.start.Year(), tt.start.Month(), tt.start.Day(), 0, 0, 0, 0, time.UTC)
			for _, occ := range occurrences {
				assert.True(t, selected[occ.Start.Weekday()],
					"weekday %v not selected", occ.Start.Weekday())
				assert.False(t, occ.Start.Before(startDay))
				occDay := time.Date(occ.Start.Year(), occ.Start.Month(), occ.Start.Day(), 0, 0, 0, 0, time.UTC)
				assert.False(t, occDay.After(tt.until))
				assert.Equal(t, time.Duration(tt.duration)*time.Minute, occ.End.Sub(occ.Start))
				assert.Equal(t, tt.start.Hour(), occ.Start.Hour())
				assert.Equal(t, tt.start.Minute(), occ.Start.Minute())
				assert.Zero(t, occ.Start.Second())
			}
		})
	}
}

func TestEngine_ExpandUntilDayInclusive(t *testing.T) {
	engine := NewEngine()

	// Until falls on a selected weekday; that day must still produce an
	// occurrence even though its start time is past midnight of the bound.
	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC) // Monday
	occurrences, err := engine.Expand(start, Rule{
		Weekdays:        []time.Weekday{time.Monday},
		Until:           time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}, Template{})
	require.NoError(t, err)
	require.Len(t, occurrences, 2)
	assert.Equal(t, 8, occurrences[1].Start.Day())
}

func TestEngine_ExpandSameDayRange(t *testing.T) {
	engine := NewEngine()

	start := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC) // Wednesday
	occurrences, err := engine.Expand(start, Rule{
		Weekdays:        []time.Weekday{time.Wednesday},
		Until:           time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 15,
	}, Template{})
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, start, occurrences[0].Start)
}

func TestEngine_ExpandErrors(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule Rule
		want error
	}{
		{
			name: "empty weekday set",
			rule: Rule{
				Until:           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
			},
			want: ErrNoWeekdays,
		},
		{
			name: "until before start",
			rule: Rule{
				Weekdays:        []time.Weekday{time.Monday},
				Until:           time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
			},
			want: ErrUntilBeforeStart,
		},
		{
			name: "zero duration",
			rule: Rule{
				Weekdays:        []time.Weekday{time.Monday},
				Until:           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				DurationMinutes: 0,
			},
			want: ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occurrences, err := engine.Expand(start, tt.rule, Template{})
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, occurrences)
		})
	}
}

func TestEngine_ExpandDeduplicatesWeekdays(t *testing.T) {
	engine := NewEngine()

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	occurrences, err := engine.Expand(start, Rule{
		Weekdays:        []time.Weekday{time.Monday, time.Monday},
		Until:           time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}, Template{})
	require.NoError(t, err)
	assert.Len(t, occurrences, 2)
}
