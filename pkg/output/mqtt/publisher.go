// Package mqtt publishes output readings to an MQTT broker.
//
// Topics, relative to the broker URL prefix:
//
//	<id>/voltage  wrappers.DoubleValue, the normalized output
//	<id>/sample   wrappers.Int32Value, the raw sample
//	<id>/meta     retained JSON Meta, cleared when the publisher stops
package mqtt

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/wrappers"

	"github.com/robotalks/ecgrx/pkg/link"
	mq "github.com/robotalks/ecgrx/pkg/mqtt"
	"github.com/robotalks/ecgrx/pkg/output"
)

// Meta describes the publishing receiver.
type Meta struct {
	SampleRate float64 `json:"sample_rate"`
	FullScale  float64 `json:"full_scale"`
}

// VoltageTopic is the topic of voltages published by device id.
func VoltageTopic(id string) string { return id + "/voltage" }

// SampleTopic is the topic of raw samples published by device id.
func SampleTopic(id string) string { return id + "/sample" }

// MetaTopic is the topic of the retained Meta of device id.
func MetaTopic(id string) string { return id + "/meta" }

// EncodeVoltage encodes a voltage payload.
func EncodeVoltage(v float64) ([]byte, error) {
	return proto.Marshal(&wrappers.DoubleValue{Value: v})
}

// DecodeVoltage decodes a voltage payload.
func DecodeVoltage(payload []byte) (float64, error) {
	var msg wrappers.DoubleValue
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return 0, err
	}
	return msg.Value, nil
}

// EncodeSample encodes a sample payload.
func EncodeSample(s link.Sample) ([]byte, error) {
	return proto.Marshal(&wrappers.Int32Value{Value: int32(s)})
}

// DecodeSample decodes a sample payload.
func DecodeSample(payload []byte) (link.Sample, error) {
	var msg wrappers.Int32Value
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return 0, err
	}
	return link.Sample(msg.Value), nil
}

// Publisher is an output.AnalogOut publishing to MQTT.
// Readings are dropped while the broker is not connected.
type Publisher struct {
	dropped uint64

	Queue *mq.Queue
	ID    string
	Meta  Meta
}

// NewPublisher creates a Publisher for device id.
func NewPublisher(brokerURL, id string, meta Meta) (*Publisher, error) {
	opts, topicPrefix, err := mq.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(id), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("ecgrx:" + id)
	}
	p := &Publisher{
		Queue: mq.NewQueue(opts, topicPrefix),
		ID:    id,
		Meta:  meta,
	}
	p.Queue.OnConnect = func(*mq.Queue) { p.publishMeta() }
	return p, nil
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt-publisher"
}

// Write implements output.AnalogOut.
func (p *Publisher) Write(r output.Reading) error {
	if !p.Queue.Client.IsConnected() {
		atomic.AddUint64(&p.dropped, 1)
		return nil
	}
	voltage, err := EncodeVoltage(r.Voltage)
	if err != nil {
		return err
	}
	sample, err := EncodeSample(r.Sample)
	if err != nil {
		return err
	}
	p.Queue.Pub(VoltageTopic(p.ID), voltage)
	p.Queue.Pub(SampleTopic(p.ID), sample)
	return nil
}

// Dropped is the number of readings not published.
func (p *Publisher) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// Run implements framework.Runnable. It connects to the broker and clears
// the retained meta when ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	p.Queue.Connect()
	<-ctx.Done()
	p.Queue.PubWith(MetaTopic(p.ID), nil, 1, true).Wait()
	p.Queue.Close()
	return ctx.Err()
}

func (p *Publisher) publishMeta() {
	meta, err := json.Marshal(&p.Meta)
	if err != nil {
		panic(err)
	}
	glog.Infof("publishing to %s%s", p.Queue.TopicPrefix, VoltageTopic(p.ID))
	p.Queue.PubWith(MetaTopic(p.ID), meta, 1, true)
}
