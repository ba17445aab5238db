package cli

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/client/client"
	"github.com/dmitrijs2005/plantshelf/internal/client/config"
	"github.com/dmitrijs2005/plantshelf/internal/client/session"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

type call struct {
	name string
	args []any
}

// fakeAPI records calls and answers from its fields.
type fakeAPI struct {
	calls []call

	user    *account.Identity
	userErr error
	tokens  session.Tokens
	err     error // returned by every other call when set

	plants  []shelf.Plant
	updates []client.PlantsUpdate
	unique  bool
	favored bool
	putURL  string
	getURL  string

	adminStates []adminoracle.Update
	isAdmin     bool
	result      *rpc.AdminResult
}

func (f *fakeAPI) record(name string, args ...any) {
	f.calls = append(f.calls, call{name: name, args: args})
}

func (f *fakeAPI) called(name string) *call {
	for i := range f.calls {
		if f.calls[i].name == name {
			return &f.calls[i]
		}
	}
	return nil
}

func (f *fakeAPI) SignUp(_ context.Context, email, password, displayName string) (*account.Identity, error) {
	f.record("SignUp", email, password, displayName)
	if f.err != nil {
		return nil, f.err
	}
	return &account.Identity{UserID: "u1", Email: email, DisplayName: displayName}, nil
}

func (f *fakeAPI) SignIn(_ context.Context, email, password string) (*account.Identity, error) {
	f.record("SignIn", email, password)
	if f.err != nil {
		return nil, f.err
	}
	return &account.Identity{UserID: "u1", Email: email}, nil
}

func (f *fakeAPI) SignOut(context.Context) error {
	f.record("SignOut")
	return f.err
}

func (f *fakeAPI) Session(context.Context) (session.Tokens, error) {
	f.record("Session")
	return f.tokens, nil
}

func (f *fakeAPI) CurrentUser(context.Context) (*account.Identity, error) {
	f.record("CurrentUser")
	return f.user, f.userErr
}

func (f *fakeAPI) SendVerificationEmail(context.Context) error {
	f.record("SendVerificationEmail")
	return f.err
}

func (f *fakeAPI) VerifyEmail(_ context.Context, code string) (*account.Identity, error) {
	f.record("VerifyEmail", code)
	if f.err != nil {
		return nil, f.err
	}
	return &account.Identity{Email: "ana@example.com", EmailVerified: true}, nil
}

func (f *fakeAPI) ConfirmPasswordReset(_ context.Context, code, newPassword string) error {
	f.record("ConfirmPasswordReset", code, newPassword)
	return f.err
}

func (f *fakeAPI) ListPlants(context.Context) ([]shelf.Plant, error) {
	f.record("ListPlants")
	return f.plants, f.err
}

func (f *fakeAPI) WatchPlants(context.Context) (<-chan client.PlantsUpdate, error) {
	f.record("WatchPlants")
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan client.PlantsUpdate, len(f.updates))
	for _, u := range f.updates {
		ch <- u
	}
	close(ch)
	return ch, nil
}

func (f *fakeAPI) IsNameUnique(_ context.Context, name, excludeID string) (bool, error) {
	f.record("IsNameUnique", name, excludeID)
	return f.unique, nil
}

func (f *fakeAPI) AddPlant(_ context.Context, d shelf.Draft) (string, error) {
	f.record("AddPlant", d)
	return "p1", f.err
}

func (f *fakeAPI) UpdatePlant(_ context.Context, id string, p shelf.Patch) error {
	f.record("UpdatePlant", id, p)
	return f.err
}

func (f *fakeAPI) ToggleFavorite(_ context.Context, id string, target *bool) (bool, error) {
	f.record("ToggleFavorite", id, target)
	return f.favored, f.err
}

func (f *fakeAPI) DeletePlant(_ context.Context, id string) error {
	f.record("DeletePlant", id)
	return f.err
}

func (f *fakeAPI) AttachPhoto(_ context.Context, id, contentType string) (string, error) {
	f.record("AttachPhoto", id, contentType)
	return f.putURL, f.err
}

func (f *fakeAPI) PhotoURL(_ context.Context, id string) (string, error) {
	f.record("PhotoURL", id)
	return f.getURL, f.err
}

func (f *fakeAPI) AdminSource() adminoracle.Source { return &fakeSource{f: f} }

func (f *fakeAPI) DeleteUserByEmail(_ context.Context, email string) (*rpc.AdminResult, error) {
	f.record("DeleteUserByEmail", email)
	return f.result, f.err
}

func (f *fakeAPI) RevokeSessionsByEmail(_ context.Context, email string) (*rpc.AdminResult, error) {
	f.record("RevokeSessionsByEmail", email)
	return f.result, f.err
}

func (f *fakeAPI) SendPasswordReset(_ context.Context, email string) (*rpc.AdminResult, error) {
	f.record("SendPasswordReset", email)
	return f.result, f.err
}

type fakeSource struct{ f *fakeAPI }

func (s *fakeSource) Watch(ctx context.Context, _ string) (<-chan adminoracle.Update, error) {
	ch := make(chan adminoracle.Update, len(s.f.adminStates))
	for _, u := range s.f.adminStates {
		ch <- u
	}
	close(ch)
	return ch, nil
}

func (s *fakeSource) Exists(context.Context, string) (bool, error) {
	return s.f.isAdmin, nil
}

type harness struct {
	api    *fakeAPI
	out    bytes.Buffer
	errOut bytes.Buffer
}

// run executes the command line against api with stdin as typed input.
func run(t *testing.T, api *fakeAPI, stdin string, args ...string) (*harness, error) {
	t.Helper()
	h := &harness{api: api}
	open := func(context.Context, config.Overrides) (*App, error) {
		return &App{
			api:    api,
			http:   http.DefaultClient,
			in:     bufio.NewReader(strings.NewReader(stdin)),
			out:    &h.out,
			errOut: &h.errOut,
		}, nil
	}
	root, _ := newRootCmd(open)
	root.SetArgs(args)
	root.SetOut(&h.out)
	root.SetErr(&h.errOut)
	return h, root.ExecuteContext(context.Background())
}

// withPasswords feeds the password prompts in order.
func withPasswords(t *testing.T, pws ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(pws) == 0 {
			t.Fatal("unexpected password prompt")
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
}
