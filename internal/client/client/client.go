package client

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/client/session"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

// TokenStore persists the signed-in session.
type TokenStore interface {
	Load(ctx context.Context) (session.Tokens, error)
	Save(ctx context.Context, t session.Tokens) error
	Clear(ctx context.Context) error
}

type GRPCClient struct {
	conn   *grpc.ClientConn
	api    rpc.PlantShelfClient
	tokens TokenStore
	now    func() time.Time

	// refreshMu serializes token refreshes within this process.
	refreshMu sync.Mutex
}

func NewGRPCClient(endpointURL string, tokens TokenStore) (*GRPCClient, error) {
	c := &GRPCClient{tokens: tokens, now: time.Now}
	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = rpc.NewPlantShelfClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// today is the caller's local calendar date.
func (c *GRPCClient) today() timex.Date {
	return timex.DateOf(c.now())
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	tok, err := c.tokens.Load(ctx)
	if err != nil {
		return err
	}

	err = invoker(withAccessToken(ctx, tok.AccessToken), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) || tok.RefreshToken == "" {
		return err
	}
	if method == rpc.FullMethod(rpc.MethodRefreshToken) {
		return err
	}

	fresh, rerr := c.refresh(ctx, tok)
	if rerr != nil {
		return rerr
	}
	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

func (c *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	tok, err := c.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}
	return streamer(withAccessToken(ctx, tok.AccessToken), desc, cc, method, opts...)
}

// refresh exchanges the refresh token of stale for a new pair and returns
// the new access token. If another process already rotated the pair, its
// access token is used instead.
func (c *GRPCClient) refresh(ctx context.Context, stale session.Tokens) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	cur, err := c.tokens.Load(ctx)
	if err != nil {
		return "", err
	}
	if cur.AccessToken != "" && cur.AccessToken != stale.AccessToken {
		return cur.AccessToken, nil
	}

	resp, err := c.api.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: stale.RefreshToken})
	if err != nil {
		return "", err
	}
	if err := c.tokens.Save(ctx, session.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := c.api.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) signedIn(ctx context.Context, resp *rpc.AuthResponse) (*account.Identity, error) {
	t := session.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, Email: resp.User.Email}
	if err := c.tokens.Save(ctx, t); err != nil {
		return nil, err
	}
	id := resp.User
	return &id, nil
}

func (c *GRPCClient) SignUp(ctx context.Context, email, password, displayName string) (*account.Identity, error) {
	if err := account.ValidateSignUp(email, displayName, password); err != nil {
		return nil, err
	}
	resp, err := c.api.SignUp(ctx, &rpc.SignUpRequest{Email: email, Password: password, DisplayName: displayName})
	if err != nil {
		return nil, mapError(err)
	}
	return c.signedIn(ctx, resp)
}

func (c *GRPCClient) SignIn(ctx context.Context, email, password string) (*account.Identity, error) {
	resp, err := c.api.SignIn(ctx, &rpc.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return c.signedIn(ctx, resp)
}

// SignOut revokes the refresh token on the server and forgets the local
// session. The local session is cleared even when the server call fails.
func (c *GRPCClient) SignOut(ctx context.Context) error {
	tok, err := c.tokens.Load(ctx)
	if err != nil {
		return err
	}
	if !tok.SignedIn() {
		return ErrSignedOut
	}

	_, rpcErr := c.api.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: tok.RefreshToken})
	if err := c.tokens.Clear(ctx); err != nil {
		return err
	}
	return mapError(rpcErr)
}

// Session returns the locally stored session.
func (c *GRPCClient) Session(ctx context.Context) (session.Tokens, error) {
	return c.tokens.Load(ctx)
}

func (c *GRPCClient) SendVerificationEmail(ctx context.Context) error {
	_, err := c.api.SendVerificationEmail(ctx, &rpc.SendVerificationEmailRequest{})
	return mapError(err)
}

func (c *GRPCClient) VerifyEmail(ctx context.Context, code string) (*account.Identity, error) {
	resp, err := c.api.VerifyEmail(ctx, &rpc.VerifyEmailRequest{Code: code})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

func (c *GRPCClient) CurrentUser(ctx context.Context) (*account.Identity, error) {
	resp, err := c.api.GetCurrentUser(ctx, &rpc.GetCurrentUserRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

func (c *GRPCClient) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if err := account.ValidatePassword(newPassword); err != nil {
		return err
	}
	_, err := c.api.ConfirmPasswordReset(ctx, &rpc.ConfirmPasswordResetRequest{Code: code, NewPassword: newPassword})
	return mapError(err)
}
