// This is the demonstration entrypoint for the RTMP/AMF encoder core.
// It loads configuration, wires the queue, chunk writer, and AMF
// encoders together, and drains one sample connect message to a file
// or stdout so the serialization stack can be exercised end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"rtmpenc/internal/amf"
	"rtmpenc/internal/config"
	"rtmpenc/internal/lifecycle"
	"rtmpenc/internal/queue"
	"rtmpenc/internal/rtmp/chunk"
	"rtmpenc/internal/rtmp/message"
	"rtmpenc/internal/rtmperr"
	"rtmpenc/internal/sink"
)

func main() {
	configPath := flag.String("config", "configs/rtmpenc.example.yaml", "Path to configuration file")
	outPath := flag.String("out", "", "Path to write the encoded chunk stream (default: stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to open output: %v", err)
		}
		defer f.Close()
		out = f
	}

	var s *sink.Sink
	if cfg.SinkMode == config.SinkModeBuffered {
		s = sink.NewBuffered(out)
	} else {
		s = sink.New(out)
	}

	writer := chunk.NewWriter(s)
	writer.OnDisconnected(func(err *rtmperr.TransportError) {
		log.Printf("demo: transport disconnected: %v", err)
	})
	writer.SetChunkSizeField(cfg.ChunkSize)

	q := queue.New(cfg.QueueCapacity)
	codecs := message.NewCodecs(amf.NopRegistry{}, fallbackStrategy(cfg.ClassDescriptionFallback), cfg.MaxExternalizableDepth)

	shutdown := lifecycle.NewShutdownHandler(context.Background())

	go func() {
		err := q.Drain(shutdown.Context(), func(p *queue.Packet) error {
			if err := writer.Write(p.Header, p.Body); err != nil {
				return err
			}
			if s.Mode() == sink.Buffered {
				return s.Flush()
			}
			return nil
		})
		if err != nil {
			log.Printf("demo: drain loop stopped: %v", err)
		}
		shutdown.MarkDone()
	}()

	enqueueSample(q, codecs)

	time.Sleep(50 * time.Millisecond)
	shutdown.Wait(2 * time.Second)
}

func fallbackStrategy(name string) amf.FallbackStrategy {
	if name == config.ClassFallbackException {
		return amf.ExceptionFallback
	}
	return amf.DynamicObjectFallback
}

func enqueueSample(q *queue.Queue, codecs *message.Codecs) {
	connect := &message.Message{
		Type:          chunk.TypeCommandAmf0,
		ChunkStreamID: 3,
		Call: &message.Call{
			MethodName: "connect",
			IsRequest:  true,
			IsInvoke:   true,
			InvokeID:   1,
			ConnParams: amf.Map{{Key: "app", Value: "live"}},
		},
	}
	body, err := codecs.Build(connect)
	if err != nil {
		log.Printf("demo: build connect message: %v", err)
		return
	}
	p := queue.AcquirePacket()
	p.Header = connect.Header(len(body), false)
	p.Body = body
	q.Enqueue(p)

	fmt.Fprintln(os.Stderr, "demo: enqueued sample connect message")
}
