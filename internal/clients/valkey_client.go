package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_INFLIGHT_PREFIX = "ballotboard:analyze:inflight:"
	VALKEY_INFLIGHT_TTL    = 30 * time.Second
)

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
}

// ValkeyGuard holds a short-lived lock per session so a submission that is
// already in flight on another replica blocks a second one.
type ValkeyGuard struct {
	Client valkey.Client
	ttl    time.Duration
}

func NewValkeyGuard(opts ValkeyOptions) (*ValkeyGuard, error) {
	clientOpts := valkey.ClientOption{
		InitAddress:      []string{opts.Address},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if opts.TLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyGuard] failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyGuard] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyGuard] Successfully connected to valkey",
		slog.String("address", opts.Address))
	return &ValkeyGuard{Client: client, ttl: VALKEY_INFLIGHT_TTL}, nil
}

// TryAcquire sets the in-flight key if it is absent. The TTL bounds how long
// a crashed replica can keep a session locked.
func (vg *ValkeyGuard) TryAcquire(ctx context.Context, key string) (bool, error) {
	cmd := vg.Client.B().Set().
		Key(VALKEY_INFLIGHT_PREFIX + key).
		Value("1").
		Nx().
		ExSeconds(int64(vg.ttl/time.Second)).
		Build()

	err := vg.Client.Do(ctx, cmd).Error()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		if isConnectionError(err) {
			slog.Warn("[ValkeyGuard] Connection problem while acquiring",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return false, err
	}
	return true, nil
}

func (vg *ValkeyGuard) Release(ctx context.Context, key string) error {
	err := vg.Client.Do(ctx, vg.Client.B().Del().Key(VALKEY_INFLIGHT_PREFIX+key).Build()).Error()
	if err != nil {
		slog.Warn("[ValkeyGuard] Failed to release in-flight key",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return err
}

func (vg *ValkeyGuard) Close() {
	vg.Client.Close()
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
