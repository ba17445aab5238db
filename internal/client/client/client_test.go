package client

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/client/session"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

type memTokens struct {
	t       session.Tokens
	saves   int
	cleared bool
}

func (m *memTokens) Load(context.Context) (session.Tokens, error) { return m.t, nil }

func (m *memTokens) Save(_ context.Context, t session.Tokens) error {
	if t.Email == "" {
		t.Email = m.t.Email
	}
	m.t = t
	m.saves++
	return nil
}

func (m *memTokens) Clear(context.Context) error {
	m.t = session.Tokens{}
	m.cleared = true
	return nil
}

// fakeStream replays items, then ends with err (io.EOF when nil).
type fakeStream[T any] struct {
	grpc.ClientStream
	items []*T
	err   error
}

func (s *fakeStream[T]) Recv() (*T, error) {
	if len(s.items) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	it := s.items[0]
	s.items = s.items[1:]
	return it, nil
}

// fakeAPI implements the calls the tests use; others panic.
type fakeAPI struct {
	rpc.PlantShelfClient

	refreshReq  *rpc.RefreshTokenRequest
	refreshResp *rpc.RefreshTokenResponse
	refreshErr  error

	authResp *rpc.AuthResponse
	authErr  error

	signOutReq *rpc.SignOutRequest
	signOutErr error

	addReq    *rpc.AddPlantRequest
	updateReq *rpc.UpdatePlantRequest

	user    account.Identity
	userErr error

	plants      *fakeStream[rpc.PlantsSnapshot]
	admin       *fakeStream[rpc.AdminStatus]
	isAdmin     bool
	adminResult *rpc.AdminResult
	adminErr    error
}

func (f *fakeAPI) RefreshToken(_ context.Context, in *rpc.RefreshTokenRequest, _ ...grpc.CallOption) (*rpc.RefreshTokenResponse, error) {
	f.refreshReq = in
	return f.refreshResp, f.refreshErr
}

func (f *fakeAPI) SignIn(context.Context, *rpc.SignInRequest, ...grpc.CallOption) (*rpc.AuthResponse, error) {
	return f.authResp, f.authErr
}

func (f *fakeAPI) SignUp(context.Context, *rpc.SignUpRequest, ...grpc.CallOption) (*rpc.AuthResponse, error) {
	return f.authResp, f.authErr
}

func (f *fakeAPI) SignOut(_ context.Context, in *rpc.SignOutRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.signOutReq = in
	return &rpc.Empty{}, f.signOutErr
}

func (f *fakeAPI) GetCurrentUser(context.Context, *rpc.GetCurrentUserRequest, ...grpc.CallOption) (*rpc.UserResponse, error) {
	return &rpc.UserResponse{User: f.user}, f.userErr
}

func (f *fakeAPI) AddPlant(_ context.Context, in *rpc.AddPlantRequest, _ ...grpc.CallOption) (*rpc.AddPlantResponse, error) {
	f.addReq = in
	return &rpc.AddPlantResponse{ID: "p1"}, nil
}

func (f *fakeAPI) UpdatePlant(_ context.Context, in *rpc.UpdatePlantRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.updateReq = in
	return &rpc.Empty{}, nil
}

func (f *fakeAPI) WatchPlants(context.Context, *rpc.WatchPlantsRequest, ...grpc.CallOption) (grpc.ServerStreamingClient[rpc.PlantsSnapshot], error) {
	return f.plants, nil
}

func (f *fakeAPI) IsAdmin(context.Context, *rpc.IsAdminRequest, ...grpc.CallOption) (*rpc.AdminStatus, error) {
	return &rpc.AdminStatus{IsAdmin: f.isAdmin}, nil
}

func (f *fakeAPI) WatchIsAdmin(context.Context, *rpc.WatchIsAdminRequest, ...grpc.CallOption) (grpc.ServerStreamingClient[rpc.AdminStatus], error) {
	return f.admin, nil
}

func (f *fakeAPI) SendPasswordReset(context.Context, *rpc.AdminEmailRequest, ...grpc.CallOption) (*rpc.AdminResult, error) {
	return f.adminResult, f.adminErr
}

var fixedNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func newTestClient(api *fakeAPI, tok session.Tokens) (*GRPCClient, *memTokens) {
	store := &memTokens{t: tok}
	return &GRPCClient{api: api, tokens: store, now: func() time.Time { return fixedNow }}, store
}

func tokenOf(t *testing.T, ctx context.Context) string {
	t.Helper()
	md, _ := metadata.FromOutgoingContext(ctx)
	toks := md.Get(common.AccessTokenHeaderName)
	if len(toks) == 0 {
		return ""
	}
	require.Len(t, toks, 1)
	return toks[0]
}

func expired() error {
	return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
}

func TestInterceptor_RefreshesTokenOnExpiredAndRetries(t *testing.T) {
	api := &fakeAPI{refreshResp: &rpc.RefreshTokenResponse{AccessToken: "A2", RefreshToken: "R2"}}
	c, store := newTestClient(api, session.Tokens{AccessToken: "A1", RefreshToken: "R1", Email: "ana@example.com"})

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		if calls == 1 {
			require.Equal(t, "A1", tokenOf(t, ctx))
			return expired()
		}
		require.Equal(t, "A2", tokenOf(t, ctx))
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "R1", api.refreshReq.RefreshToken)
	assert.Equal(t, session.Tokens{AccessToken: "A2", RefreshToken: "R2", Email: "ana@example.com"}, store.t)
}

func TestInterceptor_UsesTokenRotatedElsewhere(t *testing.T) {
	api := &fakeAPI{}
	c, store := newTestClient(api, session.Tokens{AccessToken: "A1", RefreshToken: "R1"})

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		if calls == 1 {
			// another process rotates the pair meanwhile
			store.t = session.Tokens{AccessToken: "B2", RefreshToken: "S2"}
			return expired()
		}
		require.Equal(t, "B2", tokenOf(t, ctx))
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
	assert.Nil(t, api.refreshReq)
}

func TestInterceptor_NoRefresh(t *testing.T) {
	tests := []struct {
		name   string
		tok    session.Tokens
		method string
		err    error
	}{
		{"no refresh token", session.Tokens{AccessToken: "A1"}, "/svc/Method", expired()},
		{"other unauthenticated", session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, "/svc/Method",
			status.Error(codes.Unauthenticated, common.ErrTokenRevoked.Error())},
		{"not unauthenticated", session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, "/svc/Method",
			status.Error(codes.NotFound, "not found")},
		{"refresh call itself", session.Tokens{AccessToken: "A1", RefreshToken: "R1"},
			rpc.FullMethod(rpc.MethodRefreshToken), expired()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			c, _ := newTestClient(api, tt.tok)
			invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
				return tt.err
			}
			err := c.accessTokenInterceptor(context.Background(), tt.method, nil, nil, nil, invoker)
			require.Error(t, err)
			assert.Nil(t, api.refreshReq)
		})
	}
}

func TestInterceptor_RefreshFailureReturned(t *testing.T) {
	api := &fakeAPI{refreshErr: status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())}
	c, store := newTestClient(api, session.Tokens{AccessToken: "A1", RefreshToken: "R1"})

	invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
		return expired()
	}
	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
	assert.Equal(t, common.ErrRefreshTokenExpired.Error(), status.Convert(err).Message())
	assert.Equal(t, 0, store.saves)
}

func TestInterceptor_SignedOutSendsNoToken(t *testing.T) {
	c, _ := newTestClient(&fakeAPI{}, session.Tokens{})
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		assert.Equal(t, "", tokenOf(t, ctx))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestStreamInterceptor_AttachesToken(t *testing.T) {
	c, _ := newTestClient(&fakeAPI{}, session.Tokens{AccessToken: "A1", RefreshToken: "R1"})
	streamer := func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		assert.Equal(t, "A1", tokenOf(t, ctx))
		return nil, nil
	}
	_, err := c.streamAccessTokenInterceptor(context.Background(), &grpc.StreamDesc{}, nil, "/svc/Watch", streamer)
	require.NoError(t, err)
}

func TestMapErrorAndCode(t *testing.T) {
	tests := []struct {
		in   error
		kind error
		code string
	}{
		{status.Error(codes.Unauthenticated, "Sign in required."), common.ErrorUnauthorized, "unauthenticated"},
		{expired(), common.ErrTokenExpired, "unauthenticated"},
		{status.Error(codes.PermissionDenied, "Admin only."), common.ErrorPermissionDenied, "permission-denied"},
		{status.Error(codes.InvalidArgument, "Email required."), common.ErrorInvalidArgument, "invalid-argument"},
		{status.Error(codes.NotFound, "User not found."), common.ErrorNotFound, "not-found"},
		{status.Error(codes.AlreadyExists, common.ErrDuplicateName.Error()), common.ErrDuplicateName, "already-exists"},
		{status.Error(codes.AlreadyExists, common.ErrEmailTaken.Error()), common.ErrEmailTaken, "already-exists"},
		{status.Error(codes.ResourceExhausted, "Too many requests."), common.ErrRateLimited, "resource-exhausted"},
		{status.Error(codes.Unavailable, "down"), ErrUnavailable, "unavailable"},
		{status.Error(codes.Internal, "internal error"), common.ErrorInternal, "internal"},
	}
	for _, tt := range tests {
		err := mapError(tt.in)
		assert.ErrorIs(t, err, tt.kind, tt.in.Error())
		assert.Equal(t, status.Convert(tt.in).Message(), err.Error())
		assert.Equal(t, tt.code, Code(err))
	}

	assert.NoError(t, mapError(nil))
	plain := errors.New("dial failed")
	assert.Same(t, plain, mapError(plain))
	assert.Equal(t, "unknown", Code(plain))
	assert.Equal(t, "invalid-argument", Code(&shelf.ValidationError{}))
	assert.Equal(t, "unauthenticated", Code(ErrSignedOut))
	assert.Equal(t, "permission-denied", Code(common.WithMessage(common.ErrorPermissionDenied, "Admin only.")))
}

func TestSignIn_SavesSession(t *testing.T) {
	api := &fakeAPI{authResp: &rpc.AuthResponse{
		AccessToken: "A", RefreshToken: "R",
		User: account.Identity{UserID: "u1", Email: "ana@example.com"},
	}}
	c, store := newTestClient(api, session.Tokens{})

	id, err := c.SignIn(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, session.Tokens{AccessToken: "A", RefreshToken: "R", Email: "ana@example.com"}, store.t)

	api.authErr = status.Error(codes.Unauthenticated, "Wrong email or password.")
	_, err = c.SignIn(context.Background(), "ana@example.com", "nope")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestSignUp_ValidatesLocally(t *testing.T) {
	api := &fakeAPI{}
	c, store := newTestClient(api, session.Tokens{})

	_, err := c.SignUp(context.Background(), "not-an-email", "short", "A")
	var v *shelf.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Len(t, v.Fields, 3)
	assert.Equal(t, 0, store.saves)
}

func TestSignOut(t *testing.T) {
	api := &fakeAPI{signOutErr: status.Error(codes.Unavailable, "down")}
	c, store := newTestClient(api, session.Tokens{AccessToken: "A", RefreshToken: "R"})

	err := c.SignOut(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "R", api.signOutReq.RefreshToken)
	assert.True(t, store.cleared, "local session is dropped even if the server call fails")

	err = c.SignOut(context.Background())
	assert.ErrorIs(t, err, ErrSignedOut)
}

func TestAddPlant_ValidatesAndSendsToday(t *testing.T) {
	api := &fakeAPI{}
	c, _ := newTestClient(api, session.Tokens{})
	ctx := context.Background()

	_, err := c.AddPlant(ctx, shelf.Draft{Name: "   "})
	var v *shelf.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Nil(t, api.addReq)

	_, err = c.AddPlant(ctx, shelf.Draft{Name: "Fig", NextWaterAt: timex.NewDate(2024, 5, 9)})
	require.ErrorAs(t, err, &v, "yesterday is in the past")

	id, err := c.AddPlant(ctx, shelf.Draft{Name: "  Fig ", NextWaterAt: timex.NewDate(2024, 5, 10)})
	require.NoError(t, err)
	assert.Equal(t, "p1", id)
	assert.Equal(t, "Fig", api.addReq.Draft.Name)
	assert.Equal(t, timex.NewDate(2024, 5, 10), api.addReq.Today)
}

func TestUpdatePlant_Normalizes(t *testing.T) {
	api := &fakeAPI{}
	c, _ := newTestClient(api, session.Tokens{})
	name := " Ficus "

	require.NoError(t, c.UpdatePlant(context.Background(), "p1", shelf.Patch{Name: &name}))
	assert.Equal(t, "Ficus", *api.updateReq.Patch.Name)
	assert.Equal(t, "p1", api.updateReq.ID)
}

func drain[T any](t *testing.T, ch <-chan T) []T {
	t.Helper()
	var got []T
	timeout := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, v)
		case <-timeout:
			t.Fatal("channel not closed")
		}
	}
}

func TestWatchPlants(t *testing.T) {
	api := &fakeAPI{plants: &fakeStream[rpc.PlantsSnapshot]{
		items: []*rpc.PlantsSnapshot{{}, {Plants: []shelf.Plant{{ID: "p1", Name: "Fig"}}}},
		err:   status.Error(codes.Unavailable, "change notifications unavailable"),
	}}
	c, _ := newTestClient(api, session.Tokens{AccessToken: "A", RefreshToken: "R"})

	ch, err := c.WatchPlants(context.Background())
	require.NoError(t, err)

	got := drain(t, ch)
	require.Len(t, got, 3)
	assert.Empty(t, got[0].Plants)
	assert.Equal(t, "Fig", got[1].Plants[0].Name)
	assert.ErrorIs(t, got[2].Err, ErrUnavailable)
}

func TestWatchPlants_SignedOut(t *testing.T) {
	api := &fakeAPI{userErr: status.Error(codes.Unauthenticated, "missing token")}
	c, _ := newTestClient(api, session.Tokens{})

	_, err := c.WatchPlants(context.Background())
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAdminSource_DrivesOracle(t *testing.T) {
	api := &fakeAPI{
		admin: &fakeStream[rpc.AdminStatus]{
			items: []*rpc.AdminStatus{{IsAdmin: false}, {IsAdmin: true}},
			err:   status.Error(codes.Unavailable, "down"),
		},
		isAdmin: true,
	}
	c, _ := newTestClient(api, session.Tokens{AccessToken: "A", RefreshToken: "R"})
	ana := &account.Identity{UserID: "u1", Email: "ana@example.com", EmailVerified: true}

	states := drain(t, adminoracle.Observe(context.Background(), ana, c.AdminSource()))
	require.Len(t, states, 4)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].IsAdmin)
	assert.True(t, states[2].IsAdmin)
	// the stream failed, so one direct read settles it
	assert.True(t, states[3].IsAdmin)
	assert.NoError(t, states[3].Err)
	assert.Equal(t, adminoracle.Allowed, adminoracle.Gate(ana, states[3]))
}

func TestSendPasswordReset(t *testing.T) {
	api := &fakeAPI{adminResult: &rpc.AdminResult{OK: true, Link: "https://x/reset?code=c"}}
	c, _ := newTestClient(api, session.Tokens{})

	res, err := c.SendPasswordReset(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.True(t, res.OK)

	api.adminErr = status.Error(codes.PermissionDenied, "Admin only.")
	_, err = c.SendPasswordReset(context.Background(), "bob@example.com")
	assert.ErrorIs(t, err, common.ErrorPermissionDenied)
	assert.Equal(t, "Admin only.", err.Error())
}
