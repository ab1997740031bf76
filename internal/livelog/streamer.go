// Package livelog implements the live training-log display contract:
// a single in-flight POST whose chunked text response is decoded
// incrementally and prepended to a view-model, with the trigger
// disabled for the lifetime of the stream.
package livelog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// ErrBusy is returned by Start while a stream is in flight. No request
// is issued in that case.
var ErrBusy = errors.New("stream already in flight")

// Phase is the streamer state. Transitions are strictly
// Idle -> Requesting -> Streaming -> Idle; the trigger is enabled only
// in Idle, which makes "disabled while streaming" structural.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseStreaming
)

func (p Phase) String() string {
	switch p {
	case PhaseRequesting:
		return "requesting"
	case PhaseStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// ViewModel is the state the display renders from: whether the trigger
// is interactive, and the log text with the newest chunk first.
type ViewModel struct {
	Enabled bool
	Log     string
}

// Streamer drives one training request at a time against a server URL
// and maintains the view-model. Observers see every state change via
// OnChange; rendering is a pure function of the ViewModel.
type Streamer struct {
	client   *http.Client
	url      string
	onChange func(ViewModel)

	mu    sync.Mutex
	phase Phase
	vm    ViewModel
}

// NewStreamer creates a streamer for the training endpoint url.
// onChange may be nil.
func NewStreamer(client *http.Client, url string, onChange func(ViewModel)) *Streamer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Streamer{
		client:   client,
		url:      url,
		onChange: onChange,
		vm:       ViewModel{Enabled: true},
	}
}

// Snapshot returns the current view-model.
func (s *Streamer) Snapshot() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm
}

// Phase returns the current phase.
func (s *Streamer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Streamer) set(phase Phase, mutate func(*ViewModel)) {
	s.mu.Lock()
	s.phase = phase
	if mutate != nil {
		mutate(&s.vm)
	}
	vm := s.vm
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(vm)
	}
}

// Start runs one trigger-to-completion cycle: disable, reset the log,
// POST, stream chunks (newest first), re-enable. It blocks until the
// stream terminates. Whatever the outcome, the trigger ends enabled.
func (s *Streamer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.phase = PhaseRequesting
	s.vm = ViewModel{Enabled: false, Log: ""}
	vm := s.vm
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb(vm)
	}

	defer s.set(PhaseIdle, func(vm *ViewModel) { vm.Enabled = true })

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("training request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("training request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	s.set(PhaseStreaming, nil)

	var dec Decoder
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			text := dec.Decode(buf[:n])
			if text != "" {
				s.set(PhaseStreaming, func(vm *ViewModel) { vm.Log = text + vm.Log })
			}
		}
		if readErr == io.EOF {
			if tail := dec.Flush(); tail != "" {
				s.set(PhaseStreaming, func(vm *ViewModel) { vm.Log = tail + vm.Log })
			}
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read training log: %w", readErr)
		}
	}
}
