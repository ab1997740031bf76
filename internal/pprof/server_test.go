package pprof

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestServerStartStop(t *testing.T) {
	s := NewServer()
	port, err := s.Start(0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if port == 0 {
		t.Fatal("expected a real port")
	}
	if s.Port() != port {
		t.Fatalf("Port() = %d, want %d", s.Port(), port)
	}

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/debug/pprof/", port))
	if err != nil {
		t.Fatalf("GET index: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("index status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Fatal("empty index page")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := NewServer()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop on unstarted server: %v", err)
	}
}
