// internal/vault/vault.go
//
// Vault-backed secret references.
//
// Context
// -------
//   - Config values may name a Vault KV-v2 secret instead of carrying the
//     secret itself, e.g. storage.dsn = "vault:secret/enquiry#dsn".  The
//     part before "#" is "<mount>/<path>", the part after is the key.
//   - Resolve returns plain values unchanged, so callers can pass every
//     candidate through it without checking first.
//   - Looked-up values sit in a small LRU for their TTL.  A background loop
//     renews the token when Options.Renew is set.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, vault.Options{Renew: true})   // during boot.
//  2. dsn, err := cli.Resolve(ctx, cfg.Storage.DSN)           // anywhere.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR   – scheme and host of the Vault server.
//   - VAULT_TOKEN  – token used for every read.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/cache"
)

// RefPrefix marks a config value as a Vault reference.
const RefPrefix = "vault:"

// DefaultTTL is how long Resolve keeps a value.
const DefaultTTL = 5 * time.Minute

// ErrBadRef reports a reference that is not "vault:<mount>/<path>#<key>".
var ErrBadRef = errors.New("vault: reference must look like vault:<mount>/<path>#<key>")

//
// SECTION 1.  Public façade
//

// Options tunes New.  Zero fields fall back to the VAULT_* environment.
type Options struct {
	Address string
	Token   string
	TTL     time.Duration
	Renew   bool
	Logger  *zap.SugaredLogger
}

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	ttl time.Duration
	log *zap.SugaredLogger

	cache *cache.LRU[string, cached]
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client.  With opts.Renew it also starts the token
// renewal loop, which stops when ctx ends.
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	if opts.Address != "" {
		cfg.Address = opts.Address
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if opts.Token != "" {
		apiCli.SetToken(opts.Token)
	}

	c := &Client{
		api:   apiCli,
		ttl:   opts.TTL,
		log:   opts.Logger,
		cache: cache.New[string, cached](64),
	}
	if c.ttl == 0 {
		c.ttl = DefaultTTL
	}
	if c.log == nil {
		c.log = zap.S()
	}

	if opts.Renew {
		go c.renewLoop(ctx)
	}
	return c, nil
}

// IsRef reports whether s is a Vault reference.
func IsRef(s string) bool { return strings.HasPrefix(s, RefPrefix) }

// ParseRef splits "vault:secret/enquiry#dsn" into mount "secret", path
// "enquiry", and key "dsn".
func ParseRef(s string) (mount, path, key string, err error) {
	if !IsRef(s) {
		return "", "", "", ErrBadRef
	}
	loc, key, ok := strings.Cut(strings.TrimPrefix(s, RefPrefix), "#")
	if !ok || key == "" {
		return "", "", "", ErrBadRef
	}
	mount, path, ok = strings.Cut(loc, "/")
	if !ok || mount == "" || path == "" {
		return "", "", "", ErrBadRef
	}
	return mount, path, key, nil
}

// Resolve returns s unchanged unless it is a Vault reference, in which case
// it returns the referenced value.
func (c *Client) Resolve(ctx context.Context, s string) (string, error) {
	if !IsRef(s) {
		return s, nil
	}
	mount, path, key, err := ParseRef(s)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, mount, path, key)
}

// GetKV fetches one key from a KV-v2 secret, serving repeats from the cache
// until the TTL runs out.
func (c *Client) GetKV(ctx context.Context, mount, path, key string) (string, error) {
	canonical := mount + "/" + path + "#" + key
	if cv, ok := c.cache.Get(canonical); ok {
		if time.Now().Before(cv.exp) {
			return cv.val, nil
		}
		// Expired values must not outlive a failed refresh.
		c.cache.Remove(canonical)
	}

	sec, err := c.api.KVv2(mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault get %s/%s: %w", mount, path, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %s/%s", key, mount, path)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	c.cache.Add(canonical, cached{val: sval, exp: time.Now().Add(c.ttl)})
	c.log.Debugw("vault secret resolved", "secret", mount+"/"+path, "key", key)
	return sval, nil
}

//
// SECTION 2.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		wait := c.renewOnce(ctx)
		backoff(ctx, wait)
	}
}

// renewOnce watches the current token until the watcher stops and returns
// how long to sleep before trying again.
func (c *Client) renewOnce(ctx context.Context) time.Duration {
	sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
	if err != nil {
		c.log.Warnw("vault token renew failed", "err", err)
		return 30 * time.Second
	}
	if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
		c.log.Infow("vault token is not renewable")
		return time.Hour
	}

	w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
		Secret: sec,
	})
	if err != nil {
		c.log.Warnw("vault watcher init failed", "err", err)
		return 30 * time.Second
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warnw("vault token renewal stopped", "err", err)
			}
			return 15 * time.Second
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Debugw("vault token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 3.  Helpers
//

func backoff(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
