package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/imu_recorder/internal/capture"
)

// Status is the diagnostic snapshot published while the recorder runs.
// It carries state and counters only; samples themselves never leave the
// host.
type Status struct {
	State         string `json:"state"` // "idle" or "recording"
	LogPath       string `json:"log_path,omitempty"`
	AccelCount    uint64 `json:"accel_count"`
	GyroCount     uint64 `json:"gyro_count"`
	AccelAccuracy int32  `json:"accel_accuracy"`
	GyroAccuracy  int32  `json:"gyro_accuracy"`
	Time          string `json:"time"`
}

func snapshotStatus(session *capture.Session, logPath string) Status {
	accel, gyro, accelAcc, gyroAcc := session.Stats()
	return Status{
		State:         session.State().String(),
		LogPath:       logPath,
		AccelCount:    accel,
		GyroCount:     gyro,
		AccelAccuracy: int32(accelAcc),
		GyroAccuracy:  int32(gyroAcc),
		Time:          time.Now().Format(time.RFC3339),
	}
}

// publishStatus marshals and publishes one status snapshot. Publish
// failures are logged and skipped; status is best-effort diagnostics.
func publishStatus(client mqtt.Client, topic string, st Status) {
	payload, err := json.Marshal(st)
	if err != nil {
		log.Printf("status marshal error: %v", err)
		return
	}
	if token := client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("MQTT publish error (%s): %v", topic, token.Error())
	}
}
