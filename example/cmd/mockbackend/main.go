// Standalone mock backend for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockbackend
//
// Then in another terminal:
//
//	go run ./cmd/serverboard serve -c example/config.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/serverboard/internal/mockapi"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	upRatio := flag.Float64("up", 0.66, "probability that a ping succeeds")
	latency := flag.Duration("latency", 300*time.Millisecond, "delay added to every response")
	flag.Parse()

	fmt.Printf("Mock server-management backend starting on %s\n", *addr)
	fmt.Println("Routes: GET /server/list, POST /server/save, GET /server/ping/{ip}, DELETE /server/{id}")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	backend := mockapi.New(mockapi.DefaultServers(), mockapi.RandomPinger(*upRatio), slog.Default())
	backend.SetLatency(*latency)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("mock server error", "error", err)
		os.Exit(1)
	}
}
