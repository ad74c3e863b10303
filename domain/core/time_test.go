package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampJSONIsUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	ts := NewTimestamp(time.Date(2026, 3, 1, 14, 30, 0, 500, zone))

	data, err := json.Marshal(struct {
		At *Timestamp `json:"at"`
	}{&ts})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2026-03-01T12:30:00.0000005Z"}`, string(data))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-01T14:30:00.0000005+02:00"`), &decoded))
	assert.True(t, decoded.Time().Equal(ts.Time()))
	assert.Equal(t, time.UTC, decoded.Time().Location())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &decoded))
}

func TestTimestampOrdering(t *testing.T) {
	earlier := NewTimestamp(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewTimestamp(earlier.Time().Add(time.Second))

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.IsZero())
	assert.True(t, Timestamp{}.IsZero())
	assert.Equal(t, "2026-01-01T00:00:00Z", earlier.String())
}
