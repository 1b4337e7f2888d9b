package concierge

import (
	"context"
	"sync"
	"time"
)

type fakeSession struct {
	mu          sync.Mutex
	texts       []string
	toolResults [][]ToolResult
	// respond returns the reply for the n-th send (0-based), counting text and tool-result sends.
	respond func(n int) (*Response, error)
	sends   int
}

func (s *fakeSession) SendText(_ context.Context, text string) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	n := s.sends
	s.sends++
	return s.respond(n)
}

func (s *fakeSession) SendToolResults(_ context.Context, results []ToolResult) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolResults = append(s.toolResults, results)
	n := s.sends
	s.sends++
	return s.respond(n)
}

type fakeProvider struct {
	mu       sync.Mutex
	session  *fakeSession
	err      error
	opened   int
	configs  []SessionConfig
	requests []TranscriptionRequest

	transcribe func(n int) (string, error)
}

func (p *fakeProvider) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened++
	p.configs = append(p.configs, cfg)
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

func (p *fakeProvider) Transcribe(_ context.Context, req TranscriptionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.requests)
	p.requests = append(p.requests, req)
	return p.transcribe(n)
}

func noSleepOptions() (Options, *[]time.Duration) {
	var delays []time.Duration
	opts := DefaultOptions()
	opts.Retry.Sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return opts, &delays
}
