package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/serverboard"
	"github.com/jpalmerr/serverboard/internal/mockapi"
)

func main() {
	// start an in-memory backend; pings succeed about two times in three
	backend := mockapi.New(mockapi.DefaultServers(), mockapi.RandomPinger(0.66), slog.Default())
	backend.SetLatency(300 * time.Millisecond)
	go func() {
		if err := http.ListenAndServe(":8080", backend.Handler()); err != nil {
			slog.Error("mock backend error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	client, err := serverboard.NewClient("http://localhost:8080",
		serverboard.WithRequestTimeout(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	d, err := serverboard.New(client,
		serverboard.WithPort(4200),
		serverboard.WithTitle("Server Manager"),
		serverboard.WithRefreshInterval(30*time.Second),
	)
	if err != nil {
		slog.Error("failed to create dashboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Serverboard Demo                                    ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:4200 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Backend: in-memory mock on :8080 (4 servers)        ║")
	fmt.Println("  ║   Auto-refresh every 30s                              ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Start(ctx); err != nil {
		slog.Error("serverboard error", "error", err)
		os.Exit(1)
	}
}
