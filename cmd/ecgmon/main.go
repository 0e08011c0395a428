package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/ecgrx/pkg/mqtt"
	mqttout "github.com/robotalks/ecgrx/pkg/output/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/"
	device  = "+"
)

func init() {
	if val := os.Getenv("ECGRX_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&device, "id", device, "Receiver ID to monitor, + for all.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(mqttout.MetaTopic(device), mqtt.Handler(func(topic string, payload []byte) {
		id := strings.TrimSuffix(topic, "/meta")
		if len(payload) == 0 {
			log.Printf("%s: offline", id)
			return
		}
		log.Printf("%s: online %s", id, string(payload))
	}))
	q.Sub(mqttout.VoltageTopic(device), mqtt.Handler(func(topic string, payload []byte) {
		v, err := mqttout.DecodeVoltage(payload)
		if err != nil {
			log.Printf("%s: bad payload: %v", topic, err)
			return
		}
		log.Printf("%s: %.6f", strings.TrimSuffix(topic, "/voltage"), v)
	}))

	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
