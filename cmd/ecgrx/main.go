package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/ecgrx/pkg/framework"
	"github.com/robotalks/ecgrx/pkg/receiver"
)

func init() {
	receiver.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := receiver.LoadConfig()
	if err != nil {
		glog.Exitln(err)
	}
	app := conf.MustNewApp()
	defer app.Close()

	glog.Infof("driving output at %v Hz", conf.SampleRate)
	runner := fx.NewRunner().HandleSignals()
	if err := runner.Go(app.NewLoop()).Wait(); err != nil {
		glog.Error(err)
	}
}
