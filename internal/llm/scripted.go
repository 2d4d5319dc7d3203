package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Script is a set of canned responses keyed by step name, used to run the
// workflow offline and in tests.
type Script struct {
	Responses map[string][]ResponseTemplate `json:"responses"`
	// Default answers steps missing from Responses.
	Default *ResponseTemplate `json:"default,omitempty"`
}

// ResponseTemplate describes one scripted answer.
type ResponseTemplate struct {
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
	DelayMs int    `json:"delay_ms,omitempty"`
}

// LoadScript reads a script from the provided path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w", err)
	}

	if len(script.Responses) == 0 && script.Default == nil {
		return nil, fmt.Errorf("script has no responses defined")
	}

	return &script, nil
}

// ScriptedGenerator replays a Script. Each step walks through its responses
// in order and keeps repeating the last one once they run out.
type ScriptedGenerator struct {
	script *Script

	mu    sync.Mutex
	calls map[string]int
}

// NewScripted returns a generator over script.
func NewScripted(script *Script) *ScriptedGenerator {
	return &ScriptedGenerator{script: script, calls: make(map[string]int)}
}

// Calls reports how many times step has been generated.
func (s *ScriptedGenerator) Calls(step string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[step]
}

// Generate implements Generator.
func (s *ScriptedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	tmpl, ok := s.next(req.Step)
	if !ok {
		return "", fmt.Errorf("script has no response for step %q", req.Step)
	}

	if tmpl.DelayMs > 0 {
		select {
		case <-time.After(time.Duration(tmpl.DelayMs) * time.Millisecond):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if tmpl.Error != "" {
		return "", errors.New(tmpl.Error)
	}
	return tmpl.Text, nil
}

func (s *ScriptedGenerator) next(step string) (ResponseTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.calls[step]
	s.calls[step] = n + 1

	responses := s.script.Responses[step]
	if len(responses) == 0 {
		if s.script.Default == nil {
			return ResponseTemplate{}, false
		}
		return *s.script.Default, true
	}
	if n >= len(responses) {
		n = len(responses) - 1
	}
	return responses[n], true
}
