package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_recorder/internal/capture"
	"github.com/relabs-tech/imu_recorder/internal/gps"
)

func TestSnapshotStatusIdleSession(t *testing.T) {
	session := capture.NewSession(gps.NopProvider{})

	st := snapshotStatus(session, "/data/run1.csv")
	assert.Equal(t, "idle", st.State)
	assert.Equal(t, "/data/run1.csv", st.LogPath)
	assert.Zero(t, st.AccelCount)
	assert.Zero(t, st.GyroCount)
	assert.NotEmpty(t, st.Time)
}

func TestStatusJSONFieldNames(t *testing.T) {
	st := Status{
		State:      "recording",
		LogPath:    "/data/run1.csv",
		AccelCount: 10,
		GyroCount:  11,
	}
	payload, err := json.Marshal(st)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(payload, &m))
	for _, key := range []string{"state", "log_path", "accel_count", "gyro_count", "accel_accuracy", "gyro_accuracy", "time"} {
		assert.Contains(t, m, key)
	}

	var back Status
	require.NoError(t, json.Unmarshal(payload, &back))
	assert.Equal(t, st.State, back.State)
	assert.Equal(t, st.AccelCount, back.AccelCount)
}
