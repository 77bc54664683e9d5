// Package sse provides Server-Sent Events client management for real-time communication.
package sse

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Event is one SSE message. An empty Name sends an unnamed "message" event.
type Event struct {
	Name string
	Data string
}

// WriteTo writes e in the event stream format.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if e.Name != "" {
		fmt.Fprintf(&b, "event: %s\n", e.Name)
	}
	for _, line := range strings.Split(e.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

type Client struct {
	Msg chan Event
}

// NewClient returns a client whose queue holds buffer undelivered events.
func NewClient(buffer int) *Client {
	return &Client{Msg: make(chan Event, buffer)}
}

type SSEClients struct {
	clients map[*Client]bool
	closed  bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

// Add registers client. After CloseAll the client's channel is closed right away.
func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(client.Msg)
		return
	}
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

// CloseAll closes every client channel, ending their streams, and refuses new clients.
func (s *SSEClients) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for client := range s.clients {
		delete(s.clients, client)
		close(client.Msg)
	}
}

// Broadcast queues ev for every client. Clients whose queue is full miss the event.
func (s *SSEClients) Broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		select {
		case client.Msg <- ev:
		default:
		}
	}
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
