package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventEndTime(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	e := &Event{ScheduledTime: start, DurationMinutes: 30}
	assert.Equal(t, start.Add(30*time.Minute), e.EndTime())
}

func TestEventShouldBeOpen(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	e := &Event{ScheduledTime: start, DurationMinutes: 30}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before window", start.Add(-time.Second), false},
		{"at start", start, true},
		{"inside window", start.Add(15 * time.Minute), true},
		{"at end", start.Add(30 * time.Minute), true},
		{"after end", start.Add(30*time.Minute + time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.ShouldBeOpen(tc.now))
		})
	}
}
