// Package main runs a demo WebSocket client for sweep progress events.
package main

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/ws/progress"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial %s: %v", u.String(), err)
	}
	defer func() { _ = conn.Close() }()

	log.Printf("connected to %s", u.String())
	for {
		var evt struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := conn.ReadJSON(&evt); err != nil {
			log.Fatalf("read: %v", err)
		}
		fmt.Printf("%-16s %v\n", evt.Type, evt.Data)
		if evt.Type == "run.finished" {
			return
		}
	}
}
