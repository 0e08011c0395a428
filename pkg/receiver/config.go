package receiver

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"gopkg.in/yaml.v2"

	fx "github.com/robotalks/ecgrx/pkg/framework"
	"github.com/robotalks/ecgrx/pkg/output/iio"
	"github.com/robotalks/ecgrx/pkg/serialport"
)

// DefaultSampleRate is the rate of the output task in Hz.
const DefaultSampleRate = 360.0

// Config defines the configurations for the receiver.
type Config struct {
	Serial serialport.Config `yaml:"serial"`
	// Replay is a capture file used instead of the serial port.
	Replay string `yaml:"replay"`

	// SampleRate is the output rate in Hz, fixed once running.
	SampleRate float64 `yaml:"sample_rate"`

	// IIOPath is the sysfs raw attribute of a DAC channel.
	IIOPath string `yaml:"iio_path"`
	IIOBits int    `yaml:"iio_bits"`
	// MQTTBrokerURL specifies the MQTT broker to publish to.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt"`
	// ID identifies this receiver in MQTT topics.
	ID string `yaml:"id"`
	// WebsocketAddr is the listen address of the websocket stream.
	WebsocketAddr string `yaml:"websocket"`
	// LogOutput logs every output reading at glog verbosity 2.
	LogOutput bool `yaml:"log_output"`

	// StatsInterval is the period of logging receiver counters.
	StatsInterval time.Duration `yaml:"stats_interval"`
}

var (
	defaultConfig = Config{
		Serial: serialport.Config{
			Device: "/dev/ttyACM0",
			Baud:   serialport.DefaultBaud,
		},
		SampleRate:    DefaultSampleRate,
		IIOBits:       iio.DefaultBits,
		StatsInterval: 10 * time.Second,
	}

	// snapshot of defaultConfig before flags are parsed.
	builtinConfig Config

	configFile string
)

func init() {
	if val := os.Getenv("ECGRX_SERIAL"); val != "" {
		defaultConfig.Serial.Device = val
	}
	if val := os.Getenv("ECGRX_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	defaultConfig.ID = defaultID()
	builtinConfig = defaultConfig
}

func defaultID() string {
	if id, err := machineid.ProtectedID("ecgrx"); err == nil && len(id) >= 12 {
		return id[:12]
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "ecgrx"
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file, command line flags take precedence.")
	flag.StringVar(&defaultConfig.Serial.Device, "serial", defaultConfig.Serial.Device, "Serial device of the sender.")
	flag.IntVar(&defaultConfig.Serial.Baud, "baud", defaultConfig.Serial.Baud, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.Serial.ReadTimeout, "read-timeout", defaultConfig.Serial.ReadTimeout, "Serial read timeout, 0 blocks.")
	flag.StringVar(&defaultConfig.Replay, "replay", defaultConfig.Replay, "Read wire bytes from a capture file instead of the serial port.")
	flag.Float64Var(&defaultConfig.SampleRate, "rate", defaultConfig.SampleRate, "Output rate in Hz.")
	flag.StringVar(&defaultConfig.IIOPath, "iio", defaultConfig.IIOPath, "IIO DAC raw attribute, e.g. "+iio.ChannelPath(0, 0))
	flag.IntVar(&defaultConfig.IIOBits, "iio-bits", defaultConfig.IIOBits, "IIO DAC resolution in bits.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL to publish readings.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Receiver ID used in MQTT topics.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Listen address of the websocket stream.")
	flag.BoolVar(&defaultConfig.LogOutput, "log-output", defaultConfig.LogOutput, "Log every output reading (with -v=2).")
	flag.DurationVar(&defaultConfig.StatsInterval, "stats", defaultConfig.StatsInterval, "Interval of logging receiver counters (with -v=1), 0 disables.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadConfig creates a config from the YAML file given by -config, if any,
// with command line flags applied over it.
func LoadConfig() (*Config, error) {
	if configFile == "" {
		return NewConfig(), nil
	}
	content, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("read config: %v", err)
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return configFromYAML(content, &defaultConfig, set)
}

func configFromYAML(content []byte, flagged *Config, set map[string]bool) (*Config, error) {
	conf := builtinConfig
	if err := yaml.UnmarshalStrict(content, &conf); err != nil {
		return nil, fmt.Errorf("parse config: %v", err)
	}
	for name := range set {
		switch name {
		case "serial":
			conf.Serial.Device = flagged.Serial.Device
		case "baud":
			conf.Serial.Baud = flagged.Serial.Baud
		case "read-timeout":
			conf.Serial.ReadTimeout = flagged.Serial.ReadTimeout
		case "replay":
			conf.Replay = flagged.Replay
		case "rate":
			conf.SampleRate = flagged.SampleRate
		case "iio":
			conf.IIOPath = flagged.IIOPath
		case "iio-bits":
			conf.IIOBits = flagged.IIOBits
		case "mqtt":
			conf.MQTTBrokerURL = flagged.MQTTBrokerURL
		case "id":
			conf.ID = flagged.ID
		case "ws":
			conf.WebsocketAddr = flagged.WebsocketAddr
		case "log-output":
			conf.LogOutput = flagged.LogOutput
		case "stats":
			conf.StatsInterval = flagged.StatsInterval
		}
	}
	return &conf, nil
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 || math.IsInf(c.SampleRate, 0) || math.IsNaN(c.SampleRate) ||
		fx.RateInterval(c.SampleRate) <= 0 {
		return fmt.Errorf("invalid sample rate %v", c.SampleRate)
	}
	if c.Replay == "" && c.Serial.Device == "" {
		return errors.New("serial device or replay file is required")
	}
	if c.IIOPath != "" && (c.IIOBits <= 0 || c.IIOBits > 30) {
		return fmt.Errorf("invalid DAC resolution %d bits", c.IIOBits)
	}
	if c.MQTTBrokerURL != "" && c.ID == "" {
		return errors.New("id is required to publish to MQTT")
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("invalid stats interval %v", c.StatsInterval)
	}
	return nil
}
