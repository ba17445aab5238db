// Package adminoracle answers "is this identity on the admin allowlist?"
// as a live stream of states. The same observer runs inside the server,
// over the allowlist table, and inside the CLI, over the WatchIsAdmin RPC.
package adminoracle

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/common"
)

// ErrSubscriptionClosed is reported when a source ends its update stream
// while the observer is still interested.
var ErrSubscriptionClosed = errors.New("allowlist subscription closed")

// Update is one allowlist observation. A non-nil Err means the
// subscription failed and no further updates follow.
type Update struct {
	Exists bool
	Err    error
}

// Source is an allowlist backend.
type Source interface {
	// Watch streams the existence of the entry for email, starting with
	// its current state. The stream ends when ctx is cancelled.
	Watch(ctx context.Context, email string) (<-chan Update, error)
	// Exists reads the entry once.
	Exists(ctx context.Context, email string) (bool, error)
}

// State is what observers see.
type State struct {
	IsAdmin bool
	Loading bool
	Err     error
}

// Observe streams the admin state of identity. A nil identity, or one
// without email, yields a single settled non-admin state. Otherwise a
// loading state is followed by one state per allowlist update. If the
// subscription fails, one direct read decides the final state. The
// returned channel is closed once ctx is cancelled or no further states
// can follow.
func Observe(ctx context.Context, identity *account.Identity, src Source) <-chan State {
	out := make(chan State, 1)

	email := ""
	if identity != nil {
		email = common.NormalizeEmail(identity.Email)
	}
	if email == "" {
		out <- State{}
		close(out)
		return out
	}

	go func() {
		defer close(out)

		if !emit(ctx, out, State{Loading: true}) {
			return
		}

		updates, err := src.Watch(ctx, email)
		if err != nil {
			fallback(ctx, out, src, email)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if ctx.Err() != nil {
					return
				}
				if !ok || u.Err != nil {
					fallback(ctx, out, src, email)
					return
				}
				if !emit(ctx, out, State{IsAdmin: u.Exists}) {
					return
				}
			}
		}
	}()

	return out
}

func fallback(ctx context.Context, out chan<- State, src Source, email string) {
	exists, err := src.Exists(ctx, email)
	if err != nil {
		emit(ctx, out, State{Err: err})
		return
	}
	emit(ctx, out, State{IsAdmin: exists})
}

func emit(ctx context.Context, out chan<- State, st State) bool {
	select {
	case out <- st:
		return true
	case <-ctx.Done():
		return false
	}
}

// Decision is the outcome of the admin gate.
type Decision int

const (
	Checking Decision = iota
	NeedsSignIn
	NeedsVerification
	Denied
	Allowed
)

func (d Decision) String() string {
	switch d {
	case Checking:
		return "checking"
	case NeedsSignIn:
		return "needs-sign-in"
	case NeedsVerification:
		return "needs-verification"
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	}
	return "unknown"
}

// Gate decides whether identity may reach admin features given the latest
// allowlist state. A verified email is required on top of membership.
func Gate(identity *account.Identity, st State) Decision {
	if identity == nil {
		return NeedsSignIn
	}
	if st.Loading {
		return Checking
	}
	if !identity.EmailVerified {
		return NeedsVerification
	}
	if !st.IsAdmin {
		return Denied
	}
	return Allowed
}
