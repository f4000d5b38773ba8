package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// RPCRequest is a JSON-RPC request received by an RPCServer.
type RPCRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     json.RawMessage `json:"id"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RPCReply is what an RPCHandler answers with. If HTTPStatus is set to
// anything but 200, the status is written with an empty body.
type RPCReply struct {
	Result     interface{}
	Error      *RPCError
	HTTPStatus int
}

// RPCHandler answers a single JSON-RPC call.
type RPCHandler func(req RPCRequest) RPCReply

// RPCServer provides a local JSON-RPC server that can be used for testing
// with no external dependencies.
type RPCServer struct {
	server *httptest.Server

	sync.Mutex
	handlers map[string]RPCHandler
	requests []RPCRequest
}

// NewRPCServer starts a new RPCServer. Callers must Close it.
func NewRPCServer() *RPCServer {
	s := &RPCServer{
		handlers: make(map[string]RPCHandler),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// URL is the endpoint of the server.
func (s *RPCServer) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *RPCServer) Close() {
	s.server.Close()
}

// Handle registers the handler for method, replacing any previous one.
func (s *RPCServer) Handle(method string, h RPCHandler) {
	s.Lock()
	defer s.Unlock()
	s.handlers[method] = h
}

// Result registers a handler that always returns result.
func (s *RPCServer) Result(method string, result interface{}) {
	s.Handle(method, func(RPCRequest) RPCReply {
		return RPCReply{Result: result}
	})
}

// Requests returns the requests received so far.
func (s *RPCServer) Requests() []RPCRequest {
	s.Lock()
	defer s.Unlock()
	return append([]RPCRequest(nil), s.requests...)
}

// Calls returns the number of requests received for method.
func (s *RPCServer) Calls(method string) int {
	var n int
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (s *RPCServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.Lock()
	s.requests = append(s.requests, req)
	h, ok := s.handlers[req.Method]
	s.Unlock()

	reply := RPCReply{Error: &RPCError{Code: -32601, Message: "Method not found"}}
	if ok {
		reply = h(req)
	}

	if reply.HTTPStatus != 0 && reply.HTTPStatus != http.StatusOK {
		w.WriteHeader(reply.HTTPStatus)
		return
	}

	id := req.ID
	if len(id) == 0 {
		id = json.RawMessage("0")
	}

	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
	}
	if reply.Error != nil {
		resp["error"] = reply.Error
	} else {
		resp["result"] = reply.Result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
