package receiver

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ecgrx/pkg/link"
	"github.com/robotalks/ecgrx/pkg/output"
)

func writeCapture(t *testing.T, samples []link.Sample, tail ...byte) string {
	dir, err := ioutil.TempDir("", "ecgrx")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	var content []byte
	for _, s := range samples {
		content = append(content, s.Frame()...)
	}
	content = append(content, tail...)
	path := filepath.Join(dir, "capture.bin")
	require.NoError(t, ioutil.WriteFile(path, content, 0644))
	return path
}

func TestAppReplay(t *testing.T) {
	path := writeCapture(t, []link.Sample{100, 1024}, 0x33)
	conf := &Config{Replay: path, SampleRate: DefaultSampleRate}
	app, err := conf.NewApp()
	require.NoError(t, err)
	defer app.Close()

	readings := make(chan output.Reading, 1)
	app.Output.Add(output.AnalogOutFunc(func(r output.Reading) error {
		readings <- r
		return nil
	}))

	ticks := make(chan time.Time)
	loop := app.NewLoop()
	loop.Ticks = ticks
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for app.Receiver.Stats().Bytes < 7 {
		require.True(t, time.Now().Before(deadline), "replay not consumed")
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, link.Stats{Bytes: 7, Frames: 2}, app.Receiver.Stats())

	// the trailing partial frame doesn't change the output.
	for i := 0; i < 3; i++ {
		ticks <- time.Now()
		r := <-readings
		require.Equal(t, link.Sample(1024), r.Sample)
		require.Equal(t, 0.5, r.Voltage)
	}

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.True(t, app.channel.closed)
	require.NoError(t, app.Close())
}

func TestNewAppErrors(t *testing.T) {
	_, err := (&Config{SampleRate: 360}).NewApp()
	require.Error(t, err)

	_, err = (&Config{Replay: "/no/such/capture.bin", SampleRate: 360}).NewApp()
	require.Error(t, err)

	path := writeCapture(t, nil)
	_, err = (&Config{Replay: path, SampleRate: 360, IIOPath: "/no/such/out_voltage0_raw", IIOBits: 12}).NewApp()
	require.Error(t, err)
}

func TestAppOutputs(t *testing.T) {
	path := writeCapture(t, nil)
	conf := &Config{
		Replay:        path,
		SampleRate:    360,
		MQTTBrokerURL: "mqtt://localhost:1883/ecg/",
		ID:            "bench",
		WebsocketAddr: "127.0.0.1:0",
	}
	app, err := conf.NewApp()
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.Publisher)
	require.NotNil(t, app.Hub)
	require.Equal(t, 2, app.Output.Len())
}
