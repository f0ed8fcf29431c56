package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recorder_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
# capture
IMU_FREQ=1
OUTPUT_DIR=/data/captures
USE_MOCK_SENSORS=false

IMU_SPI_DEVICE=/dev/spidev6.0
IMU_CS_PIN=18
IMU_ACCEL_RANGE=2
IMU_GYRO_RANGE=3
IMU_DLPF_CFG=4
IMU_SMPLRT_DIV=9

GPS_SERIAL_PORT=/dev/serial0
GPS_BAUD_RATE=115200
GPS_LOG_FILE=/data/captures/gps.csv

MQTT_BROKER=tcp://localhost:1883
TOPIC_STATUS=recorder/status
STATUS_INTERVAL_SECONDS=2
WEB_SERVER_PORT=9090

DISPLAY_I2C_BUS=1
DISPLAY_UPDATE_INTERVAL=250
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.IMUFreq)
	assert.Equal(t, "/data/captures", cfg.OutputDir)
	assert.False(t, cfg.UseMockSensors)
	assert.Equal(t, "/dev/spidev6.0", cfg.IMUSPIDevice)
	assert.Equal(t, "18", cfg.IMUCSPin)
	assert.Equal(t, byte(2), cfg.IMUAccelRange)
	assert.Equal(t, byte(3), cfg.IMUGyroRange)
	assert.Equal(t, byte(4), cfg.IMUDLPFConfig)
	assert.Equal(t, byte(9), cfg.IMUSampleRateDiv)
	assert.Equal(t, "/dev/serial0", cfg.GPSSerialPort)
	assert.Equal(t, 115200, cfg.GPSBaudRate)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, 2, cfg.StatusIntervalSeconds)
	assert.Equal(t, 9090, cfg.WebServerPort)
	assert.Equal(t, "1", cfg.DisplayI2CBus)
	assert.Equal(t, 250, cfg.DisplayUpdateInterval)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
OUTPUT_DIR=/tmp/captures
USE_MOCK_SENSORS=true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0", cfg.IMUFreq, "default rate hint is fastest")
	assert.Equal(t, "recorder/status", cfg.TopicStatus)
	assert.Equal(t, 1, cfg.StatusIntervalSeconds)
	assert.Equal(t, 9600, cfg.GPSBaudRate)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.Equal(t, 500, cfg.DisplayUpdateInterval)
	assert.Equal(t, "imu-recorder", cfg.MQTTClientIDRecorder)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{"unknown key", "OUTPUT_DIR=/x\nUSE_MOCK_SENSORS=true\nNO_SUCH_KEY=1\n", "unknown config key"},
		{"bad line", "OUTPUT_DIR /x\n", "invalid config line"},
		{"bad freq", "OUTPUT_DIR=/x\nIMU_FREQ=9\n", "IMU_FREQ"},
		{"bad accel range", "OUTPUT_DIR=/x\nUSE_MOCK_SENSORS=true\nIMU_ACCEL_RANGE=7\n", "IMU_ACCEL_RANGE"},
		{"bad bool", "OUTPUT_DIR=/x\nUSE_MOCK_SENSORS=maybe\n", "USE_MOCK_SENSORS"},
		{"missing output dir", "USE_MOCK_SENSORS=true\n", "OUTPUT_DIR is required"},
		{"spi required", "OUTPUT_DIR=/x\n", "IMU_SPI_DEVICE is required"},
		{"gps log required", "OUTPUT_DIR=/x\nUSE_MOCK_SENSORS=true\nGPS_SERIAL_PORT=/dev/serial0\n", "GPS_LOG_FILE is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantIn)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestValidateStatusInterval(t *testing.T) {
	cfg := defaults()
	cfg.OutputDir = "/x"
	cfg.UseMockSensors = true
	cfg.StatusIntervalSeconds = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATUS_INTERVAL_SECONDS")
}
