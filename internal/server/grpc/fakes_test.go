package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/server/services"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"google.golang.org/grpc"
)

type nopLogger struct{}

func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- identity ----

type fakeIdentity struct {
	pair *services.TokenPair
	user *account.Identity
	err  error

	// tokens maps access tokens to identities for Authenticate.
	tokens  map[string]*account.Identity
	authErr error

	// sessionErr is returned by CheckSession once sessionOK calls have passed.
	sessionErr error
	sessionOK  int
	checked    []string

	signedOut string
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, displayName string) (*services.TokenPair, *account.Identity, error) {
	return f.pair, f.user, f.err
}
func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*services.TokenPair, *account.Identity, error) {
	return f.pair, f.user, f.err
}
func (f *fakeIdentity) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.pair, f.err
}
func (f *fakeIdentity) SignOut(ctx context.Context, refreshToken string) error {
	f.signedOut = refreshToken
	return f.err
}
func (f *fakeIdentity) SendVerificationEmail(ctx context.Context, userID string) error { return f.err }
func (f *fakeIdentity) VerifyEmail(ctx context.Context, code string) (*account.Identity, error) {
	return f.user, f.err
}
func (f *fakeIdentity) CurrentUser(ctx context.Context, userID string) (*account.Identity, error) {
	return f.user, f.err
}
func (f *fakeIdentity) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	return f.err
}
func (f *fakeIdentity) Authenticate(ctx context.Context, accessToken string) (*account.Identity, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	id, ok := f.tokens[accessToken]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return id, nil
}

func (f *fakeIdentity) CheckSession(ctx context.Context, accessToken string) error {
	f.checked = append(f.checked, accessToken)
	if f.sessionErr != nil && len(f.checked) > f.sessionOK {
		return f.sessionErr
	}
	return nil
}

// ---- plants ----

type plantCall struct {
	method string
	userID string
	id     string
	draft  shelf.Draft
	patch  shelf.Patch
}

type fakePlants struct {
	mu    sync.Mutex
	calls []plantCall

	plants    []shelf.Plant
	snapshots chan services.PlantsSnapshot
	unique    bool
	newID     string
	favorite  bool
	url       string
	err       error
}

func (f *fakePlants) record(c plantCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakePlants) ListPlants(ctx context.Context, userID string) ([]shelf.Plant, error) {
	f.record(plantCall{method: "ListPlants", userID: userID})
	return f.plants, f.err
}
func (f *fakePlants) ObservePlants(ctx context.Context, userID string) (<-chan services.PlantsSnapshot, error) {
	f.record(plantCall{method: "ObservePlants", userID: userID})
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots, nil
}
func (f *fakePlants) IsNameUnique(ctx context.Context, userID, name, excludeID string) (bool, error) {
	f.record(plantCall{method: "IsNameUnique", userID: userID, id: excludeID})
	return f.unique, f.err
}
func (f *fakePlants) AddPlant(ctx context.Context, userID string, draft shelf.Draft) (string, error) {
	f.record(plantCall{method: "AddPlant", userID: userID, draft: draft})
	return f.newID, f.err
}
func (f *fakePlants) UpdatePlant(ctx context.Context, userID, id string, patch shelf.Patch) error {
	f.record(plantCall{method: "UpdatePlant", userID: userID, id: id, patch: patch})
	return f.err
}
func (f *fakePlants) ToggleFavorite(ctx context.Context, userID, id string, next *bool) (bool, error) {
	f.record(plantCall{method: "ToggleFavorite", userID: userID, id: id})
	return f.favorite, f.err
}
func (f *fakePlants) DeletePlant(ctx context.Context, userID, id string) error {
	f.record(plantCall{method: "DeletePlant", userID: userID, id: id})
	return f.err
}
func (f *fakePlants) AttachPhoto(ctx context.Context, userID, id, contentType string) (string, error) {
	f.record(plantCall{method: "AttachPhoto", userID: userID, id: id})
	return f.url, f.err
}
func (f *fakePlants) PhotoURL(ctx context.Context, userID, id string) (string, error) {
	f.record(plantCall{method: "PhotoURL", userID: userID, id: id})
	return f.url, f.err
}

// ---- admin ----

type fakeAdmin struct {
	isAdmin bool
	states  []adminoracle.State
	result  *services.AdminResult
	err     error
	target  string
}

func (f *fakeAdmin) IsAdmin(ctx context.Context, caller *account.Identity) (bool, error) {
	return f.isAdmin, f.err
}
func (f *fakeAdmin) WatchIsAdmin(ctx context.Context, caller *account.Identity) <-chan adminoracle.State {
	ch := make(chan adminoracle.State, len(f.states))
	for _, st := range f.states {
		ch <- st
	}
	close(ch)
	return ch
}
func (f *fakeAdmin) DeleteUserByEmail(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error) {
	f.target = email
	return f.result, f.err
}
func (f *fakeAdmin) RevokeSessionsByEmail(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error) {
	f.target = email
	return f.result, f.err
}
func (f *fakeAdmin) SendPasswordReset(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error) {
	f.target = email
	return f.result, f.err
}

// ---- streams ----

// fakeStream collects what a server-streaming handler sends.
type fakeStream[T any] struct {
	grpc.ServerStream
	ctx     context.Context
	sent    []*T
	sendErr error
}

func (f *fakeStream[T]) Context() context.Context { return f.ctx }

func (f *fakeStream[T]) Send(m *T) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, m)
	return nil
}
