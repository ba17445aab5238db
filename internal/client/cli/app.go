package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/client/client"
	"github.com/dmitrijs2005/plantshelf/internal/client/config"
	"github.com/dmitrijs2005/plantshelf/internal/client/session"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

// API is the part of the client library the commands use.
type API interface {
	SignUp(ctx context.Context, email, password, displayName string) (*account.Identity, error)
	SignIn(ctx context.Context, email, password string) (*account.Identity, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (session.Tokens, error)
	CurrentUser(ctx context.Context) (*account.Identity, error)
	SendVerificationEmail(ctx context.Context) error
	VerifyEmail(ctx context.Context, code string) (*account.Identity, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error

	ListPlants(ctx context.Context) ([]shelf.Plant, error)
	WatchPlants(ctx context.Context) (<-chan client.PlantsUpdate, error)
	IsNameUnique(ctx context.Context, name, excludeID string) (bool, error)
	AddPlant(ctx context.Context, d shelf.Draft) (string, error)
	UpdatePlant(ctx context.Context, id string, p shelf.Patch) error
	ToggleFavorite(ctx context.Context, id string, target *bool) (bool, error)
	DeletePlant(ctx context.Context, id string) error
	AttachPhoto(ctx context.Context, id, contentType string) (string, error)
	PhotoURL(ctx context.Context, id string) (string, error)

	AdminSource() adminoracle.Source
	DeleteUserByEmail(ctx context.Context, email string) (*rpc.AdminResult, error)
	RevokeSessionsByEmail(ctx context.Context, email string) (*rpc.AdminResult, error)
	SendPasswordReset(ctx context.Context, email string) (*rpc.AdminResult, error)
}

// App is what every command runs against.
type App struct {
	api    API
	http   *http.Client
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	close  func() error
}

// errReported marks a failure already printed to the user.
var errReported = errors.New("command failed")

// IsReported tells whether err was already printed by a command.
func IsReported(err error) bool {
	return errors.Is(err, errReported)
}

// fail prints "<op> failed: <code> — <message>" and returns an error the
// root command will not print again.
func (a *App) fail(op string, err error) error {
	fmt.Fprintf(a.errOut, "%s failed: %s — %s\n", op, client.Code(err), err.Error())
	return fmt.Errorf("%s: %w", op, errReported)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// openApp connects to the configured server and opens the local session.
func openApp(ctx context.Context, o config.Overrides) (*App, error) {
	cfg, err := config.Load(o)
	if err != nil {
		return nil, err
	}

	store, err := session.Open(ctx, cfg.SessionPath())
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	c, err := client.NewGRPCClient(cfg.ServerAddr, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.ServerAddr, err)
	}

	return &App{
		api:    c,
		http:   http.DefaultClient,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
		close: func() error {
			return errors.Join(c.Close(), store.Close())
		},
	}, nil
}
