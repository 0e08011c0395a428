// Package websocket streams output readings to websocket clients.
package websocket

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/ecgrx/pkg/framework"
	"github.com/robotalks/ecgrx/pkg/output"
)

// Message is the JSON form of a reading sent to clients.
type Message struct {
	Raw     int     `json:"raw"`
	Voltage float64 `json:"voltage"`
	// TS is the tick time in Unix nanoseconds.
	TS int64 `json:"ts"`
}

// MessageFrom converts a Reading.
func MessageFrom(r output.Reading) Message {
	return Message{Raw: r.Sample.Int(), Voltage: r.Voltage, TS: r.Time.UnixNano()}
}

// Hub is an output.AnalogOut broadcasting every reading to connected
// clients. A client which can't keep up only gets the latest reading.
type Hub struct {
	Addr string

	lock    sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	ch chan Message
}

// NewHub creates a Hub to be served on addr.
func NewHub(addr string) *Hub {
	return &Hub{Addr: addr, clients: make(map[*client]struct{})}
}

// Name implements framework.Named.
func (h *Hub) Name() string {
	return "websocket"
}

// Handler serves the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Write implements output.AnalogOut.
func (h *Hub) Write(r output.Reading) error {
	msg := MessageFrom(r)
	h.lock.RLock()
	defer h.lock.RUnlock()
	for c := range h.clients {
		select {
		case c.ch <- msg:
			continue
		default:
		}
		select {
		case <-c.ch:
		default:
		}
		select {
		case c.ch <- msg:
		default:
		}
	}
	return nil
}

// Run implements framework.Runnable.
func (h *Hub) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", h.Handler())
	server := &http.Server{Addr: h.Addr, Handler: mux}
	glog.Infof("websocket listening on %s", h.Addr)
	err := fx.RunWithContextCancel(ctx, func() { server.Close() }, server.ListenAndServe)
	if err == http.ErrServerClosed {
		return ctx.Err()
	}
	return err
}

func (h *Hub) serve(ws *websocket.Conn) {
	defer ws.Close()
	c := &client{ch: make(chan Message, 1)}
	h.lock.Lock()
	if h.clients == nil {
		h.clients = make(map[*client]struct{})
	}
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.clients, c)
		h.lock.Unlock()
	}()

	glog.V(1).Infof("websocket client %s connected", ws.Request().RemoteAddr)
	closed := make(chan struct{})
	go func() {
		io.Copy(ioutil.Discard, ws)
		close(closed)
	}()
	for {
		select {
		case msg := <-c.ch:
			if err := websocket.JSON.Send(ws, msg); err != nil {
				glog.V(1).Infof("websocket client %s: %v", ws.Request().RemoteAddr, err)
				return
			}
		case <-closed:
			glog.V(1).Infof("websocket client %s disconnected", ws.Request().RemoteAddr)
			return
		}
	}
}
