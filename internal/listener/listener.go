// Package listener provides a Postgres LISTEN/NOTIFY consumer for standings
// changes. It holds a dedicated pgx connection (not from the pool) listening
// on the `standings_changed` channel.
//
// Every insert or delete on matches fires pg_notify with the tournament id,
// and roster changes on players or tournaments fire it with 0, so API
// replicas sharing one database drop stale cached reads even when the write
// went through another process (the CLI, another replica).
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// Channel is the NOTIFY channel raised by the matches trigger.
	Channel          = "standings_changed"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// ChangeFunc is called once per notification with the affected tournament.
// It is also called with 0 after every successful LISTEN, since anything
// written while disconnected raised no notification we could see.
type ChangeFunc func(tournamentID int64)

// conn is the part of *pgx.Conn a listen session uses.
type conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connect = func(ctx context.Context, dbURL string) (conn, error) {
	return pgx.Connect(ctx, dbURL)
}

// Start opens a dedicated connection and listens on the standings_changed
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, onChange ChangeFunc, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, onChange, logger)
		if ctx.Err() != nil {
			logger.Info("Standings listener stopped (context cancelled)")
			return
		}

		logger.Error("Standings listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = nextBackoff(backoff)
		case <-ctx.Done():
			return
		}
	}
}

func nextBackoff(d time.Duration) time.Duration {
	return min(d*2, maxReconnect)
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, onChange ChangeFunc, logger *slog.Logger) error {
	c, err := connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close(context.Background())

	_, err = c.Exec(ctx, "LISTEN "+Channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", Channel, err)
	}
	logger.Info("Standings listener connected", "channel", Channel)
	onChange(0)

	for {
		notification, err := c.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		tournamentID, err := ParsePayload(notification.Payload)
		if err != nil {
			logger.Warn("Failed to parse standings event",
				"payload", notification.Payload, "error", err)
			continue
		}

		logger.Debug("Standings changed", "tournament_id", tournamentID)
		onChange(tournamentID)
	}
}

// ParsePayload reads the tournament id carried by a notification.
func ParsePayload(payload string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("tournament id: %w", err)
	}
	return id, nil
}
