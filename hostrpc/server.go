package hostrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/hostrpc/jsonrpc"
	"github.com/prometheus/client_golang/prometheus"
)

var BadMessageFormatError string = "bad message format"
var InternalError string = "internal error"
var DefaultMaxSimultaneousRequests = 25

// Conn is a bidirectional message stream to a single host. Send may be
// called concurrently.
type Conn interface {
	Recv(ctx context.Context) ([]byte, error)
	Send(ctx context.Context, data []byte) error
}

// ServiceDesc and is constructed from it for internal purposes.
type serviceInfo struct {
	// Contains the implementation for the methods in this service.
	serviceImpl interface{}
	methods     map[string]*MethodDesc
}

type methodInfo struct {
	service *serviceInfo
	method  *MethodDesc
}

type Server struct {
	mu                      sync.Mutex
	serving                 int
	maxSimultaneousRequests int
	metrics                 *metrics
	services                map[string]*serviceInfo
	methods                 map[string]*methodInfo
}

// NewServer creates a server that handles at most maxSimultaneousRequests
// requests per connection at a time. Metrics are registered with reg, which
// may be nil.
func NewServer(maxSimultaneousRequests int, reg prometheus.Registerer) *Server {
	if maxSimultaneousRequests <= 0 {
		maxSimultaneousRequests = DefaultMaxSimultaneousRequests
	}
	return &Server{
		maxSimultaneousRequests: maxSimultaneousRequests,
		metrics:                 newMetrics(reg),
		services:                make(map[string]*serviceInfo),
		methods:                 make(map[string]*methodInfo),
	}
}

// Serve handles requests from conn until the host disconnects or ctx is
// done. Requests in flight are cancelled and awaited before Serve returns.
// Serve may be called for several connections at once.
func (s *Server) Serve(ctx context.Context, conn Conn) error {
	s.mu.Lock()
	s.serving++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.serving--
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	guard := make(chan struct{}, s.maxSimultaneousRequests)
	for {
		data, err := conn.Recv(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				log.Printf("hostrpc: connection closed, stopping.")
				return nil
			}

			log.Printf("hostrpc Serve(): Recv() err != nil: %v", err)
			return err
		}

		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}

		req := new(jsonrpc.Request)
		err = json.Unmarshal(data, req)
		if err != nil {
			log.Printf("UNUSUAL: Failed to unmarshal host request: %v", err)
			s.sendError(ctx, conn, nil, status.New(codes.ParseError, BadMessageFormatError))
			continue
		}

		if req.JsonRpc != jsonrpc.Version {
			log.Printf("UNUSUAL: jsonrpc version is '%s' in host request", req.JsonRpc)
			s.sendError(ctx, conn, req, status.Newf(codes.InvalidRequest, "Expected jsonrpc %s, found %s", jsonrpc.Version, req.JsonRpc))
			continue
		}

		m, ok := s.methods[req.Method]
		if !ok {
			log.Printf("UNUSUAL: host requested method '%s', but it does not exist.", req.Method)
			s.metrics.observe("unknown", codes.MethodNotFound, 0)
			s.sendError(ctx, conn, req, status.New(codes.MethodNotFound, "method not found"))
			continue
		}

		// Deserialization step of the request params. This function is called
		// by method handlers of service implementations to deserialize the
		// typed request object.
		df := func(v interface{}) error {
			params := req.Params
			if len(params) == 0 || string(params) == "null" {
				params = []byte("{}")
			}
			if err := json.Unmarshal(params, v); err != nil {
				// Boundary types reject malformed values with their own
				// status while decoding.
				if _, ok := status.FromError(err); ok {
					return err
				}
				// A number that doesn't fit a numeric field, like a negative
				// port or an expiry beyond 32 bits, carries its literal in
				// Value. A number given for a non-numeric field doesn't.
				var typeErr *json.UnmarshalTypeError
				if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Value, "number ") {
					return status.Newf(codes.OutOfRange, "%s: %s is out of range", typeErr.Field, typeErr.Value).Err()
				}
				return status.Newf(codes.InvalidParams, "invalid params: %v", err).Err()
			}

			return nil
		}

		// Will block if the guard queue is already filled to ensure
		// maxSimultaneousRequests is not exceeded.
		select {
		case guard <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		// NOTE: The handler is being called asynchonously. Responses may be
		// sent in a different order than the requests were received.
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Releases a queued item in the guard, to release a spot for
			// another simultaneous request.
			defer func() { <-guard }()

			s.metrics.inFlight.Inc()
			defer s.metrics.inFlight.Dec()
			start := time.Now()

			// Call the method handler for the requested method.
			r, err := m.method.Handler(m.service.serviceImpl, ctx, df)
			if err != nil {
				st, ok := status.FromError(err)
				if !ok {
					log.Printf("Internal error when processing host request '%s': %v", req.Method, err)
					st = status.New(codes.InternalError, InternalError)
				}

				s.metrics.observe(req.Method, st.Code, time.Since(start))
				s.sendError(ctx, conn, req, st)
				return
			}

			s.metrics.observe(req.Method, codes.OK, time.Since(start))
			s.sendResponse(ctx, conn, req, r)
		}()
	}
}

func (s *Server) sendResponse(
	ctx context.Context,
	conn Conn,
	req *jsonrpc.Request,
	params interface{},
) {
	rd, err := json.Marshal(params)
	if err != nil {
		log.Printf("Failed to mashal response params '%+v': %v", params, err)
		st, ok := status.FromError(err)
		if !ok {
			st = status.New(codes.InternalError, InternalError)
		}
		s.sendError(ctx, conn, req, st)
		return
	}

	resp := &jsonrpc.Response{
		JsonRpc: jsonrpc.Version,
		Id:      req.Id,
		Result:  rd,
	}
	res, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to mashal response '%+v'", resp)
		s.sendError(ctx, conn, req, status.New(codes.InternalError, InternalError))
		return
	}

	err = conn.Send(ctx, res)
	if err != nil {
		log.Printf("Failed to send response '%s' to request '%s': %v", string(res), req.Method, err)
		return
	}
}

func (s *Server) sendError(
	ctx context.Context,
	conn Conn,
	req *jsonrpc.Request,
	st *status.Status,
) {
	var id json.RawMessage
	if req != nil {
		id = req.Id
	}
	body := jsonrpc.ErrorBody{
		Code:    int32(st.Code),
		Message: st.Message,
	}
	if family := st.Code.Family(); family != codes.FamilyProtocol && family != codes.FamilyNone {
		data, err := json.Marshal(&jsonrpc.ErrorData{
			Family: family.String(),
			Kind:   st.Code.String(),
		})
		if err == nil {
			body.Data = data
		}
	}
	resp := &jsonrpc.Error{
		JsonRpc: jsonrpc.Version,
		Id:      id,
		Error:   body,
	}

	res, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to mashal response '%+v'", resp)
		return
	}

	err = conn.Send(ctx, res)
	if err != nil {
		log.Printf("Failed to send error '%s': %v", string(res), err)
		return
	}
}

func (s *Server) RegisterService(desc *ServiceDesc, impl interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("RegisterService(%q)", desc.ServiceName)
	if s.serving > 0 {
		log.Fatalf("hostrpc: Server.RegisterService after Server.Serve for %q", desc.ServiceName)
	}
	if _, ok := s.services[desc.ServiceName]; ok {
		log.Fatalf("hostrpc: Server.RegisterService found duplicate service registration for %q", desc.ServiceName)
	}
	info := &serviceInfo{
		serviceImpl: impl,
		methods:     make(map[string]*MethodDesc),
	}
	for i := range desc.Methods {
		d := &desc.Methods[i]
		if _, ok := s.methods[d.MethodName]; ok {
			log.Fatalf("hostrpc: Server.RegisterService found duplicate method registration for %q", d.MethodName)
		}
		info.methods[d.MethodName] = d
		s.methods[d.MethodName] = &methodInfo{
			service: info,
			method:  d,
		}
	}
	s.services[desc.ServiceName] = info
}

type ServiceDesc struct {
	ServiceName string
	// The pointer to the service interface. Used to check whether the user
	// provided implementation satisfies the interface requirements.
	HandlerType interface{}
	Methods     []MethodDesc
}

type MethodDesc struct {
	MethodName string
	Handler    methodHandler
}

type methodHandler func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error)

// ServiceRegistrar wraps a single method that supports service registration.
type ServiceRegistrar interface {
	// RegisterService registers a service and its implementation to the
	// concrete type implementing this interface. It may not be called
	// once the server has started serving.
	RegisterService(desc *ServiceDesc, impl interface{})
}
