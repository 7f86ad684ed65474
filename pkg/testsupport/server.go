package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-formsync/pkg/formstate"
	"github.com/goliatone/go-formsync/pkg/payload"
	"github.com/goliatone/go-formsync/pkg/transport"
)

// Request is one request received by an EnvelopeServer.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   string
	// Pairs is the decoded body in wire order.
	Pairs payload.Pairs
}

// Reply is a canned response.
type Reply struct {
	Status int
	// Envelope is encoded as JSON when Raw is empty.
	Envelope *transport.Envelope
	Raw      string
}

// EnvelopeServer is an httptest server answering row operations with queued
// replies. Once the queue is empty it repeats Default.
type EnvelopeServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	replies  []Reply
	Default  Reply
	gate     chan struct{}
	arrivals chan Request
}

// NewEnvelopeServer starts a server and closes it with the test.
func NewEnvelopeServer(t *testing.T, replies ...Reply) *EnvelopeServer {
	t.Helper()
	s := &EnvelopeServer{
		replies:  replies,
		Default:  Reply{Envelope: Success("", nil)},
		arrivals: make(chan Request, 64),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Enqueue appends replies.
func (s *EnvelopeServer) Enqueue(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Block holds every response until Release is called.
func (s *EnvelopeServer) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		s.gate = make(chan struct{})
	}
}

// Release lets held and future responses through.
func (s *EnvelopeServer) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Requests returns every request received so far.
func (s *EnvelopeServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Arrivals signals each request as soon as it is received, before any
// Block takes effect.
func (s *EnvelopeServer) Arrivals() <-chan Request {
	return s.arrivals
}

func (s *EnvelopeServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   string(body),
		Pairs:  DecodePairs(string(body)),
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply := s.Default
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	gate := s.gate
	s.mu.Unlock()

	select {
	case s.arrivals <- req:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if reply.Raw != "" {
		_, _ = io.WriteString(w, reply.Raw)
		return
	}
	if reply.Envelope != nil {
		_ = json.NewEncoder(w).Encode(reply.Envelope)
	}
}

// DecodePairs splits an urlencoded body preserving order and duplicates.
func DecodePairs(body string) payload.Pairs {
	var out payload.Pairs
	if body == "" {
		return out
	}
	for _, part := range strings.Split(body, "&") {
		name, value, _ := strings.Cut(part, "=")
		name, _ = url.QueryUnescape(name)
		value, _ = url.QueryUnescape(value)
		out.Add(name, value)
	}
	return out
}

// Success builds an INFORMATIONAL envelope.
func Success(msg string, data formstate.Row) *transport.Envelope {
	return &transport.Envelope{
		Result: &transport.Result{
			FinalMessage:  msg,
			FinalSeverity: transport.SeverityInformational,
			FinalType:     transport.TypeResult,
		},
		Data: data,
	}
}

// Failure builds an ERROR envelope.
func Failure(msg string) *transport.Envelope {
	return &transport.Envelope{
		Result: &transport.Result{
			FinalMessage:  msg,
			FinalSeverity: transport.SeverityError,
			FinalType:     transport.TypeResult,
		},
		Error: transport.Text(msg),
	}
}
