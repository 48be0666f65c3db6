package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_UnixMethods(t *testing.T) {
	// 固定时间，避免依赖当前时钟
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	assert.Equal(t, now.Unix(), tt.Unix())
	assert.Equal(t, now.UnixMilli(), tt.UnixMilli())
	assert.Equal(t, now.UnixMicro(), tt.UnixMicro())
	assert.Equal(t, now.UnixNano(), tt.UnixNano())
}

func TestTime_JSONRoundTrip(t *testing.T) {
	tt := Time(time.Date(2024, 3, 15, 8, 30, 0, 0, time.Local))

	data, err := json.Marshal(tt)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15 08:30:00"`, string(data))

	var parsed Time
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Time().Equal(tt.Time()))
}

func TestTime_JSONZero(t *testing.T) {
	var tt Time
	data, err := json.Marshal(tt)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	var parsed Time
	require.NoError(t, json.Unmarshal([]byte(`""`), &parsed))
	assert.True(t, parsed.IsZero())
}

func TestTime_Scan(t *testing.T) {
	var tt Time
	require.NoError(t, tt.Scan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, tt.IsZero())

	var fromString Time
	require.NoError(t, fromString.Scan("2024-03-15 08:30:00"))
	assert.Equal(t, "2024-03-15 08:30:00", fromString.String())

	var fromNil Time
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())

	var bad Time
	assert.Error(t, bad.Scan(12345))
}
