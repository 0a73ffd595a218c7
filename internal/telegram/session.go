package telegram

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"net"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/iksnae/tgsum/internal"
)

// stringSessionVersion prefixes every Telethon session string
const stringSessionVersion = "1"

const authKeySize = 256

// EncodeStringSession encodes session data as a Telethon StringSession:
// version "1" followed by URL-safe base64 of dc id, server ip, port and auth key.
func EncodeStringSession(data *session.Data) (string, error) {
	if data == nil {
		return "", errors.New("no session data")
	}
	if len(data.AuthKey) != authKeySize {
		return "", errors.Errorf("auth key must be %d bytes, got %d", authKeySize, len(data.AuthKey))
	}

	host, portStr, err := net.SplitHostPort(data.Addr)
	if err != nil {
		return "", errors.Wrapf(err, "parse address %q", data.Addr)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return "", errors.Errorf("address %q is not an IP", data.Addr)
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", errors.Wrapf(err, "parse port %q", portStr)
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(data.DC))
	buf.Write(ip)
	_ = binary.Write(&buf, binary.BigEndian, uint16(port))
	buf.Write(data.AuthKey)

	return stringSessionVersion + base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// CodePrompt asks the user for the login code Telegram sent
type CodePrompt func(ctx context.Context) (string, error)

// PasswordPrompt asks the user for their two-step verification password
type PasswordPrompt func(ctx context.Context) (string, error)

// terminalAuth answers the login flow from user prompts
type terminalAuth struct {
	phone    string
	code     CodePrompt
	password PasswordPrompt
}

func (a terminalAuth) Phone(_ context.Context) (string, error) {
	return a.phone, nil
}

func (a terminalAuth) Password(ctx context.Context) (string, error) {
	if a.password == nil {
		return "", auth.ErrPasswordNotProvided
	}
	return a.password(ctx)
}

func (a terminalAuth) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.code(ctx)
}

func (a terminalAuth) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a terminalAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up is not supported; register the account with an official app first")
}

// Login signs in with phone and returns a session string for the new session
func Login(ctx context.Context, opts Options, phone string, code CodePrompt, password PasswordPrompt) (string, error) {
	if phone == "" {
		return "", errors.New("phone number is required")
	}
	if code == nil {
		return "", errors.New("code prompt is required")
	}

	opts.StringSession = ""
	c, err := New(ctx, opts)
	if err != nil {
		return "", err
	}

	flow := auth.NewFlow(terminalAuth{phone: phone, code: code, password: password}, auth.SendCodeOptions{})
	err = c.client.Run(ctx, func(ctx context.Context) error {
		if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
			return errors.Wrap(err, "login")
		}
		self, err := c.client.Self(ctx)
		if err != nil {
			return errors.Wrap(err, "get self")
		}
		internal.LogInfo("Logged in as %s", userName(self))
		return nil
	})
	if err != nil {
		return "", &internal.FetchError{Op: "auth", Err: err}
	}

	data, err := (&session.Loader{Storage: c.storage}).Load(ctx)
	if err != nil {
		return "", errors.Wrap(err, "load session")
	}
	return EncodeStringSession(data)
}

var _ auth.UserAuthenticator = terminalAuth{}
