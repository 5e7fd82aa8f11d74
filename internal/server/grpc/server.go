// Package grpc serves the vault API over gRPC. Messages are
// google.protobuf.Struct values so the service is declared by hand.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/ratelimit"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/tokens"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/vaults"
	"google.golang.org/grpc"
)

// Observer receives per-request outcomes, typically metrics.
type Observer interface {
	RequestHandled(method, code string, d time.Duration)
	QuotaRejected(limit string)
}

type nopObserver struct{}

func (nopObserver) RequestHandled(string, string, time.Duration) {}
func (nopObserver) QuotaRejected(string)                         {}

// Services are the domain components behind the API.
type Services struct {
	Users    *users.Service
	Tokens   *tokens.Engine
	Vaults   *vaults.Service
	Activity *activity.Recorder
}

type Server struct {
	address  string
	logger   logging.Logger
	users    *users.Service
	tokens   *tokens.Engine
	vaults   *vaults.Service
	activity *activity.Recorder
	limiter  *ratelimit.Limiter
	observer Observer
}

// NewServer builds the server. limiter and observer may be nil.
func NewServer(address string, l logging.Logger, svc Services, limiter *ratelimit.Limiter, observer Observer) *Server {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Server{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		users:    svc.Users,
		tokens:   svc.Tokens,
		vaults:   svc.Vaults,
		activity: svc.Activity,
		limiter:  limiter,
		observer: observer,
	}
}

func (s *Server) newGRPCServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.observeInterceptor,
		s.rateLimitInterceptor,
		s.sessionInterceptor,
	))
	desc := serviceDesc()
	srv.RegisterService(&desc, s)
	return srv
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newGRPCServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
