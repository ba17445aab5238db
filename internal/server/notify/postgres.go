package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrijs2005/plantshelf/internal/logging"
)

// PostgresBroker listens on one PostgreSQL NOTIFY channel over a dedicated
// connection and treats each payload as a topic. While the connection is
// down, Subscribe fails and existing subscriptions are ended.
type PostgresBroker struct {
	dsn     string
	channel string
	logger  logging.Logger
	h       *hub

	// RetryDelay is the pause between reconnection attempts.
	RetryDelay time.Duration
}

func NewPostgresBroker(dsn, channel string, logger logging.Logger) *PostgresBroker {
	return &PostgresBroker{
		dsn:        dsn,
		channel:    channel,
		logger:     logger.With("module", "notify"),
		h:          newHub(false),
		RetryDelay: 2 * time.Second,
	}
}

func (b *PostgresBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	return b.h.subscribe(ctx, topic)
}

// Run keeps a LISTEN connection open until ctx is cancelled, reconnecting
// after failures.
func (b *PostgresBroker) Run(ctx context.Context) error {
	for {
		err := b.listen(ctx)
		b.h.setAvailable(false)
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn(ctx, "notification listener stopped, reconnecting", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.RetryDelay):
		}
	}
}

func (b *PostgresBroker) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, b.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	b.h.setAvailable(true)
	b.logger.Info(ctx, "listening for changes", "channel", b.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		b.h.publish(n.Payload)
	}
}
