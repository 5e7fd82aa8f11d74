package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/client/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultCallTimeout = 15 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpointURL. Extra dial options are appended
// after the defaults, which use plaintext transport.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// invoke sends in as a Struct to method and decodes the reply into out,
// which may be nil.
func (s *GRPCClient) invoke(ctx context.Context, method string, in any, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}

	reply := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, common.FullMethod(method), req, reply); err != nil {
		return s.mapError(err)
	}
	if out == nil {
		return nil
	}

	b, err := json.Marshal(reply.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func toStruct(in any) (*structpb.Struct, error) {
	if in == nil {
		return &structpb.Struct{}, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == "session expired" {
			return ErrSessionExpired
		}
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument, codes.AlreadyExists, codes.FailedPrecondition, codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := s.invoke(ctx, common.MethodPing, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return fmt.Errorf("unexpected ping status %q", resp.Status)
	}
	return nil
}

// Login authenticates and keeps the session token for later calls.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	req := map[string]string{"email": email, "password": password}
	var session models.Session
	if err := s.invoke(ctx, common.MethodLogin, req, &session); err != nil {
		return nil, err
	}
	s.SetAccessToken(session.AccessToken)
	return &session, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*models.Identity, error) {
	var resp struct {
		Identity models.Identity `json:"identity"`
	}
	if err := s.invoke(ctx, common.MethodMe, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Identity, nil
}

func (s *GRPCClient) SetPlan(ctx context.Context, identityID, plan string, expiresAt *time.Time) error {
	req := map[string]string{"identityId": identityID, "plan": plan}
	if expiresAt != nil {
		req["expiresAt"] = expiresAt.UTC().Format(time.RFC3339)
	}
	return s.invoke(ctx, common.MethodSetPlan, req, nil)
}

func (s *GRPCClient) ListGuests(ctx context.Context) ([]models.Identity, error) {
	var resp struct {
		Guests []models.Identity `json:"guests"`
	}
	if err := s.invoke(ctx, common.MethodListGuests, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Guests, nil
}

func (s *GRPCClient) ListVaults(ctx context.Context) ([]models.Vault, error) {
	var resp struct {
		Vaults []models.Vault `json:"vaults"`
	}
	if err := s.invoke(ctx, common.MethodListVaults, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Vaults, nil
}

func (s *GRPCClient) Usage(ctx context.Context) (*models.Usage, error) {
	var resp struct {
		Usage models.Usage `json:"usage"`
	}
	if err := s.invoke(ctx, common.MethodUsage, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Usage, nil
}

func (s *GRPCClient) QueryActivity(ctx context.Context, subjectID string, limit int) ([]models.ActivityEntry, error) {
	req := map[string]any{"subjectId": subjectID, "limit": limit}
	var resp struct {
		Entries []models.ActivityEntry `json:"entries"`
	}
	if err := s.invoke(ctx, common.MethodQueryActivity, req, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}
