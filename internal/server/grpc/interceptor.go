package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/netx"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	principalKey ctxKey = "principal"
	originKey    ctxKey = "origin"
)

func principalFrom(ctx context.Context) (guard.Principal, bool) {
	p, ok := ctx.Value(principalKey).(guard.Principal)
	return p, ok && p.ID != ""
}

func originFrom(ctx context.Context) string {
	o, _ := ctx.Value(originKey).(string)
	return o
}

// resolveOrigin prefers the proxy-supplied forwarded address over the
// transport peer.
func resolveOrigin(ctx context.Context) string {
	var forwarded []string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		forwarded = md.Get(common.ForwardedForHeaderName)
	}
	var addr string
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr = p.Addr.String()
	}
	return netx.Origin(forwarded, addr)
}

func shortMethod(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}

func (s *Server) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	s.observer.RequestHandled(info.FullMethod, code.String(), time.Since(start))
	s.logger.Debug(ctx, "request handled", "method", info.FullMethod, "code", code.String())
	return resp, err
}

// rateLimitInterceptor runs before the session check and before any store
// access.
func (s *Server) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	origin := resolveOrigin(ctx)
	ctx = context.WithValue(ctx, originKey, origin)

	if s.limiter != nil {
		if err := s.limiter.Allow(origin, shortMethod(info.FullMethod)); err != nil {
			s.logger.Warn(ctx, "rate limited", "origin", origin, "method", info.FullMethod)
			return nil, status.Error(codes.ResourceExhausted, "too many requests")
		}
	}
	return handler(ctx, req)
}

func (s *Server) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if isPublic(info.FullMethod) {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	p, err := s.tokens.ValidateSession(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "session expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, principalKey, p)
	return handler(ctx, req)
}
