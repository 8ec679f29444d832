package anidb_test

import (
	"net"
	"strings"
	"sync"
	"testing"
)

type request struct {
	command string
	params  map[string]string
	raw     string
}

// handlerFunc returns the datagrams to send back. Replies returned through
// reply() carry the request's tag; raw strings are sent untouched.
type handlerFunc func(req request) []string

type fakeServer struct {
	t       testing.TB
	conn    *net.UDPConn
	handler handlerFunc

	mu       sync.Mutex
	requests []request
	done     chan struct{}
}

func newFakeServer(t testing.TB, handler handlerFunc) *fakeServer {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	srv := &fakeServer{t: t, conn: conn, handler: handler, done: make(chan struct{})}
	go srv.serve()
	t.Cleanup(func() {
		conn.Close()
		<-srv.done
	})
	return srv
}

func (s *fakeServer) Addr() string {
	return s.conn.LocalAddr().String()
}

func (s *fakeServer) serve() {
	defer close(s.done)
	buf := make([]byte, 4096)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		req := parseRequest(string(buf[:n]))
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		for _, out := range s.handler(req) {
			if _, err := s.conn.WriteToUDP([]byte(out), addr); err != nil {
				return
			}
		}
	}
}

func (s *fakeServer) Requests(command string) []request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []request
	for _, req := range s.requests {
		if command == "" || req.command == command {
			out = append(out, req)
		}
	}
	return out
}

func parseRequest(raw string) request {
	command, rest, _ := strings.Cut(raw, " ")
	params := make(map[string]string)
	for _, pair := range strings.Split(rest, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if ok {
			params[key] = value
		}
	}
	return request{command: command, params: params, raw: raw}
}

func reply(req request, body string) string {
	return req.params["tag"] + " " + body
}

// loginThen accepts AUTH and LOGOUT and delegates everything else.
func loginThen(next handlerFunc) handlerFunc {
	return func(req request) []string {
		switch req.command {
		case "AUTH":
			return []string{reply(req, "200 sess1 LOGIN ACCEPTED")}
		case "LOGOUT":
			return []string{reply(req, "203 LOGGED OUT")}
		default:
			return next(req)
		}
	}
}
