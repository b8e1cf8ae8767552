package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealTimeProvider_UTCMicroseconds(t *testing.T) {
	now := (&RealTimeProvider{}).Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(time.Microsecond))
}

func TestFixedTimeProvider_AddTime(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewFixedTimeProvider(start)
	assert.Equal(t, start, clock.Now())

	clock.AddTime(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), clock.Now())
}
