// Package telegram fetches chat history from Telegram with a user session.
package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"golang.org/x/time/rate"

	"github.com/iksnae/tgsum/internal"
)

// Options configures a Telegram client
type Options struct {
	AppID         int
	AppHash       string
	StringSession string // Telethon StringSession; empty starts a fresh session

	DeviceModel    string
	SystemVersion  string
	AppVersion     string
	SystemLangCode string
	LangCode       string

	// RequestsPerSecond caps outgoing RPCs; zero disables the limit
	RequestsPerSecond float64
}

// Client wraps a gotd client and its in-memory session
type Client struct {
	client  *telegram.Client
	storage *session.StorageMemory
}

// New creates a client. The connection is opened by Run.
func New(ctx context.Context, opts Options) (*Client, error) {
	storage := new(session.StorageMemory)
	if opts.StringSession != "" {
		data, err := session.TelethonSession(opts.StringSession)
		if err != nil {
			return nil, errors.Wrap(err, "decode session string")
		}
		if err := (&session.Loader{Storage: storage}).Save(ctx, data); err != nil {
			return nil, errors.Wrap(err, "store session")
		}
	}

	var middlewares []telegram.Middleware
	if opts.RequestsPerSecond > 0 {
		middlewares = append(middlewares, rateLimit(opts.RequestsPerSecond))
	}

	client := telegram.NewClient(opts.AppID, opts.AppHash, telegram.Options{
		SessionStorage: storage,
		Device: telegram.DeviceConfig{
			DeviceModel:    opts.DeviceModel,
			SystemVersion:  opts.SystemVersion,
			AppVersion:     opts.AppVersion,
			SystemLangCode: opts.SystemLangCode,
			LangCode:       opts.LangCode,
		},
		Middlewares: middlewares,
		NoUpdates:   true,
	})

	return &Client{client: client, storage: storage}, nil
}

// Run connects, checks that the session is authorized and calls fn with a Source
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context, src *Source) error) error {
	return c.client.Run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return &internal.FetchError{Op: "auth", Err: errors.Wrap(err, "auth status")}
		}
		if !status.Authorized {
			return &internal.FetchError{Op: "auth", Err: errors.New("session is not authorized; run `tgsum session` to log in")}
		}
		internal.LogDebug("Telegram session authorized")
		return fn(ctx, NewSource(c.client.API()))
	})
}

// rateLimit returns a middleware that waits for a limiter token before each RPC
func rateLimit(rps float64) telegram.Middleware {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return telegram.MiddlewareFunc(func(next tg.Invoker) telegram.InvokeFunc {
		return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
			if err := limiter.Wait(ctx); err != nil {
				return errors.Wrap(err, "rate limit")
			}
			return next.Invoke(ctx, input, output)
		}
	})
}
