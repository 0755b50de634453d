package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"sentimentai/voice-server/internal/audio"
	"sentimentai/voice-server/internal/relay"
	"sentimentai/voice-server/internal/voice"
	"sentimentai/voice-server/pkg/logger"
)

func main() {
	urlPtr := flag.String("url", "ws://localhost:3001/ws/voice-chat", "Voice WebSocket endpoint")
	localePtr := flag.String("locale", "en", "Conversation locale (en or ar)")
	audioPtr := flag.String("audio", "", "Raw PCM16 24kHz mono file to stream as microphone input")
	outPtr := flag.String("out", "", "File to write assistant audio to (raw PCM16)")
	holdPtr := flag.Duration("hold", 30*time.Second, "How long to wait for the response after the input ends")
	flag.Parse()

	if *audioPtr == "" {
		fmt.Println("Voice client usage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	log := logger.New(logger.Config{Level: "info", JSON: false})

	in, err := os.Open(*audioPtr)
	if err != nil {
		log.LogError(err, "Failed to open input audio")
		os.Exit(1)
	}

	var out *os.File
	if *outPtr != "" {
		out, err = os.Create(*outPtr)
		if err != nil {
			log.LogError(err, "Failed to create output file")
			os.Exit(1)
		}
	}

	sink := audio.NewStreamSink(out)
	src := audio.NewReaderSource(in, true)

	var session *voice.Session
	client := voice.NewClient(
		*urlPtr+"?locale="+*localePtr,
		voice.DefaultRetryPolicy(),
		func(msg *relay.ServerMessage) {
			switch msg.Type {
			case relay.TypeConnected:
				log.Info("Connected", "session_id", msg.SessionID, "greeting", msg.Message)
			case relay.TypeUserTranscript:
				fmt.Printf("you: %s\n", msg.Transcript)
			case relay.TypeResponseComplete:
				log.Info("Response complete")
			}
			session.HandleMessage(msg)
		},
		log,
	)

	session = voice.NewSession(client, sink, src, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := client.Connect(ctx); err != nil {
		cancel()
		log.LogError(err, "Failed to connect")
		os.Exit(1)
	}
	cancel()

	if err := session.StartRecording(); err != nil {
		log.LogError(err, "Failed to start streaming")
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Let the file stream out, then hold the session open so the
	// response can arrive and play.
	select {
	case <-interrupt:
		log.Info("Interrupt received, shutting down...")
	case <-time.After(*holdPtr):
	case <-client.Done():
	}

	session.Close()
	client.Close()
}
