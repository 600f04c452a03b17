// Manual WebSocket consumer for the chunk event stream. Connects to a
// running service, subscribes to /ws and writes every received chunk to
// disk so the emitted audio can be inspected by ear.
//
// Usage:
//
//	go run test_event_consumer.go -url ws://localhost:8080/ws -out ./chunks
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gorilla/websocket"
)

type chunkPayload struct {
	AudioData     string `json:"audioData"`
	Format        string `json:"format"`
	SampleRate    int    `json:"sampleRate"`
	Channels      int    `json:"channels"`
	BitsPerSample int    `json:"bitsPerSample"`
	ChunkNumber   int    `json:"chunkNumber"`
}

type event struct {
	Type      string       `json:"type"`
	SessionID string       `json:"sessionId"`
	Payload   chunkPayload `json:"payload"`
	Message   string       `json:"message"`
}

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "WebSocket event stream URL")
	outDir := flag.String("out", "./chunks", "Directory for received chunk files")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *url, err)
	}
	defer conn.Close()

	log.Printf("🎧 Connected to %s", *url)
	log.Printf("💾 Writing chunks to %s", *outDir)
	log.Println("💡 Start a recording with: curl -X POST http://localhost:8080/recording/start")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupted, closing connection")
		conn.Close()
		os.Exit(0)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Read failed: %v", err)
		}

		var ev event
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Printf("⚠️  Unparseable event: %v", err)
			continue
		}

		switch ev.Type {
		case "chunk-ready", "last-chunk-ready":
			data, err := base64.StdEncoding.DecodeString(ev.Payload.AudioData)
			if err != nil {
				log.Printf("⚠️  Chunk %d has invalid base64: %v", ev.Payload.ChunkNumber, err)
				continue
			}

			name := fmt.Sprintf("%s_chunk_%03d.%s", ev.SessionID, ev.Payload.ChunkNumber, ev.Payload.Format)
			path := filepath.Join(*outDir, name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				log.Printf("⚠️  Failed to write %s: %v", path, err)
				continue
			}

			marker := "🔊"
			if ev.Type == "last-chunk-ready" {
				marker = "🏁"
			}
			log.Printf("%s %s #%d: %d bytes, %d Hz, %d ch, %d bit -> %s",
				marker, ev.Type, ev.Payload.ChunkNumber, len(data),
				ev.Payload.SampleRate, ev.Payload.Channels, ev.Payload.BitsPerSample, path)

		case "debug":
			log.Printf("🐛 [%s] %s", ev.SessionID, ev.Message)

		default:
			log.Printf("❓ Unknown event type: %s", ev.Type)
		}
	}
}
