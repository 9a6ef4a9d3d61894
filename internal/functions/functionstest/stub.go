// Package functionstest provides an in-process functions.Caller for tests and
// for running without a functions endpoint.
package functionstest

import (
	"context"
	"encoding/json"
	"sync"
)

// Invocation is one recorded call.
type Invocation struct {
	Name     string
	Callable bool
	Payload  any
}

// Stub answers calls from canned responses. A response is JSON-encoded and
// decoded into the caller's out value, so maps and structs both work.
type Stub struct {
	mu          sync.Mutex
	Responses   map[string]any
	Errors      map[string]error
	Invocations []Invocation
}

func New() *Stub {
	return &Stub{Responses: map[string]any{}, Errors: map[string]error{}}
}

func (s *Stub) Respond(name string, v any) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses[name] = v
	return s
}

func (s *Stub) Fail(name string, err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors[name] = err
	return s
}

func (s *Stub) Call(ctx context.Context, name string, payload, out any) error {
	return s.invoke(name, true, payload, out)
}

func (s *Stub) Post(ctx context.Context, name string, payload, out any) error {
	return s.invoke(name, false, payload, out)
}

// Count returns how many times name was invoked.
func (s *Stub) Count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, inv := range s.Invocations {
		if inv.Name == name {
			n++
		}
	}
	return n
}

func (s *Stub) invoke(name string, callable bool, payload, out any) error {
	s.mu.Lock()
	s.Invocations = append(s.Invocations, Invocation{Name: name, Callable: callable, Payload: payload})
	err := s.Errors[name]
	resp, ok := s.Responses[name]
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok || out == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
