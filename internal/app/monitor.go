// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/imu_recorder/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RunMonitor subscribes to the recorder's status topic and serves the
// latest snapshot over a small JSON API plus a WebSocket push endpoint.
func RunMonitor(cfg *config.Config) error {
	var (
		mu         sync.RWMutex
		lastStatus Status
		haveStatus bool
		conns      = map[*websocket.Conn]bool{}
		connsMu    sync.Mutex
	)

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDMonitor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("monitor: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the status topic; fan each update out to the
	//    connected WebSocket clients.
	token := client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("monitor: status unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastStatus = st
		haveStatus = true
		mu.Unlock()

		connsMu.Lock()
		for c := range conns {
			if err := c.WriteJSON(st); err != nil {
				c.Close()
				delete(conns, c)
			}
		}
		connsMu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("monitor: subscribed to %s", cfg.TopicStatus)

	// 3) JSON API endpoint: latest status
	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveStatus {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastStatus); err != nil {
			log.Printf("monitor: json encode error: %v", err)
		}
	})

	// 4) WebSocket push endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("monitor: websocket upgrade error: %v", err)
			return
		}

		mu.RLock()
		st, have := lastStatus, haveStatus
		mu.RUnlock()
		if have {
			if err := conn.WriteJSON(st); err != nil {
				conn.Close()
				return
			}
		}

		connsMu.Lock()
		conns[conn] = true
		connsMu.Unlock()

		// Drain (and discard) client messages so closes are noticed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					connsMu.Lock()
					delete(conns, conn)
					connsMu.Unlock()
					conn.Close()
					return
				}
			}
		}()
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("monitor: web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
