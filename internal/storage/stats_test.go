package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAverageInterval(t *testing.T) {
	base := time.Date(2018, 3, 1, 12, 0, 0, 0, time.UTC)
	timestamps := []time.Time{
		base.Add(10 * time.Second),
		base.Add(5 * time.Second),
		base,
	}
	assert.Equal(t, 5*time.Second, averageInterval(timestamps))

	// uneven gaps average out
	timestamps = []time.Time{
		base.Add(9 * time.Second),
		base.Add(6 * time.Second),
		base,
	}
	assert.Equal(t, 4500*time.Millisecond, averageInterval(timestamps))
}

func TestAverageIntervalTooFewSamples(t *testing.T) {
	assert.Equal(t, time.Duration(0), averageInterval(nil))
	assert.Equal(t, time.Duration(0), averageInterval([]time.Time{time.Now()}))
}

func TestPerMinute(t *testing.T) {
	assert.Equal(t, 1.0, perMinute(60, time.Hour))
	assert.Equal(t, 0.0, perMinute(0, time.Hour))
	assert.Equal(t, 2.5, perMinute(150, time.Hour))
}
