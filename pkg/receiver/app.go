// Package receiver assembles the link receiver and the output task into
// a running application.
package receiver

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/ecgrx/pkg/framework"
	"github.com/robotalks/ecgrx/pkg/link"
	"github.com/robotalks/ecgrx/pkg/output"
	"github.com/robotalks/ecgrx/pkg/output/iio"
	"github.com/robotalks/ecgrx/pkg/output/mqtt"
	"github.com/robotalks/ecgrx/pkg/output/websocket"
	"github.com/robotalks/ecgrx/pkg/register"
	"github.com/robotalks/ecgrx/pkg/serialport"
)

// App is the receiver with its outputs.
type App struct {
	Config   *Config
	Register register.Register
	Receiver *link.Receiver
	Output   output.Mux

	Publisher *mqtt.Publisher
	Hub       *websocket.Hub

	channel *channelCloser
	closers []io.Closer
}

// channelCloser closes the wire channel once, either when the receiver
// stops or when the App is closed.
type channelCloser struct {
	io.Closer
	once   sync.Once
	closed bool
	err    error
}

func (c *channelCloser) Close() error {
	c.once.Do(func() {
		c.err = c.Closer.Close()
		c.closed = true
	})
	return c.err
}

// NewApp opens the channel and outputs configured.
func (c *Config) NewApp() (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	app := &App{Config: c}
	if err := app.openChannel(); err != nil {
		return nil, err
	}
	if err := app.openOutputs(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// MustNewApp creates App and fails on error.
func (c *Config) MustNewApp() *App {
	app, err := c.NewApp()
	if err != nil {
		glog.Exitln(err)
	}
	return app
}

func (a *App) openChannel() error {
	var r io.ReadCloser
	var err error
	readTimeout := false
	if path := a.Config.Replay; path != "" {
		glog.Infof("replaying %s", path)
		r, err = serialport.OpenReplay(path, a.Config.Serial.Baud)
	} else {
		glog.Infof("opening %s at %d baud", a.Config.Serial.Device, a.Config.Serial.SerialConfig().Baud)
		r, err = serialport.Open(a.Config.Serial)
		readTimeout = a.Config.Serial.ReadTimeout > 0
	}
	if err != nil {
		return err
	}
	a.channel = &channelCloser{Closer: r}
	a.closers = append(a.closers, a.channel)
	a.Receiver = link.NewReceiver(r, &a.Register)
	a.Receiver.ReadTimeout = readTimeout
	return nil
}

func (a *App) openOutputs() error {
	conf := a.Config
	if conf.IIOPath != "" {
		dac, err := iio.Open(conf.IIOPath, conf.IIOBits)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, dac)
		a.Output.Add(dac)
	}
	if conf.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(conf.MQTTBrokerURL, conf.ID, mqtt.Meta{
			SampleRate: conf.SampleRate,
			FullScale:  output.FullScale,
		})
		if err != nil {
			return fmt.Errorf("create MQTT publisher error: %v", err)
		}
		a.Publisher = pub
		a.Output.Add(pub)
	}
	if conf.WebsocketAddr != "" {
		a.Hub = websocket.NewHub(conf.WebsocketAddr)
		a.Output.Add(a.Hub)
	}
	if conf.LogOutput || a.Output.Len() == 0 {
		a.Output.Add(&output.LogOut{Verbosity: 2})
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (a *App) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun(a.Receiver.Name(), fx.RunFunc(a.runReceiver)))
	loop.Add(output.NewTask(&a.Register, &a.Output))
	if interval := a.Config.StatsInterval; interval > 0 {
		loop.AddController(fx.PrLvPostProc, newStatsReporter(a.Receiver, interval))
	}
	if a.Publisher != nil {
		loop.AddRunnable(a.Publisher)
	}
	if a.Hub != nil {
		loop.AddRunnable(a.Hub)
	}
}

// NewLoop creates a Loop running the App at the configured rate.
func (a *App) NewLoop() *fx.Loop {
	return fx.NewLoopWithRate(a.Config.SampleRate).Add(a)
}

// The channel is closed when the receiver stops, which also releases a
// reader blocked in Read. A finished replay leaves the output holding the
// last sample until stopped, the same as a sender going quiet.
func (a *App) runReceiver(ctx context.Context) error {
	err := fx.RunWithContextCloser(ctx, a.channel, func() error {
		return a.Receiver.Run(ctx)
	})
	if err == io.EOF && a.Config.Replay != "" {
		stats := a.Receiver.Stats()
		glog.Infof("replay finished: %d frames, %d bytes dropped", stats.Frames, stats.Dropped)
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

// Close releases the channel and outputs.
func (a *App) Close() error {
	var errs fx.AggregatedError
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs.Add(a.closers[i].Close())
	}
	a.closers = nil
	return errs.Aggregate()
}
