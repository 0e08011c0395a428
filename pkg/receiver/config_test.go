package receiver

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ecgrx/pkg/serialport"
)

func TestDefaultConfig(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, DefaultSampleRate, conf.SampleRate)
	require.Equal(t, serialport.DefaultBaud, conf.Serial.Baud)
	require.NotEmpty(t, conf.ID)
	require.NoError(t, conf.Validate())
	require.False(t, conf == Default())
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Serial: serialport.Config{Device: "/dev/ttyACM0"}, SampleRate: 360}
	}
	testCases := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"replay only", func(c *Config) { c.Serial.Device, c.Replay = "", "capture.bin" }, true},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, false},
		{"negative rate", func(c *Config) { c.SampleRate = -360 }, false},
		{"infinite rate", func(c *Config) { c.SampleRate = math.Inf(1) }, false},
		{"nan rate", func(c *Config) { c.SampleRate = math.NaN() }, false},
		{"rate beyond clock resolution", func(c *Config) { c.SampleRate = 2e9 }, false},
		{"no channel", func(c *Config) { c.Serial.Device = "" }, false},
		{"bad dac bits", func(c *Config) { c.IIOPath, c.IIOBits = "/dev/null", 0 }, false},
		{"mqtt without id", func(c *Config) { c.MQTTBrokerURL = "mqtt://broker/" }, false},
		{"mqtt with id", func(c *Config) { c.MQTTBrokerURL, c.ID = "mqtt://broker/", "rx" }, true},
		{"negative stats", func(c *Config) { c.StatsInterval = -time.Second }, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := valid()
			tc.modify(conf)
			if tc.ok {
				require.NoError(t, conf.Validate())
			} else {
				require.Error(t, conf.Validate())
			}
		})
	}
}

func TestConfigFromYAML(t *testing.T) {
	content := []byte(`
serial:
  device: /dev/ttyUSB1
  read_timeout: 50ms
sample_rate: 250
mqtt: mqtt://broker/ecg/
id: bench
stats_interval: 1m
`)
	flagged := &Config{SampleRate: 500, ID: "ignored"}
	conf, err := configFromYAML(content, flagged, map[string]bool{"rate": true})
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB1", conf.Serial.Device)
	require.Equal(t, serialport.DefaultBaud, conf.Serial.Baud)
	require.Equal(t, 50*time.Millisecond, conf.Serial.ReadTimeout)
	require.Equal(t, 500.0, conf.SampleRate)
	require.Equal(t, "mqtt://broker/ecg/", conf.MQTTBrokerURL)
	require.Equal(t, "bench", conf.ID)
	require.Equal(t, time.Minute, conf.StatsInterval)

	_, err = configFromYAML([]byte("no_such_option: 1\n"), flagged, nil)
	require.Error(t, err)
}
