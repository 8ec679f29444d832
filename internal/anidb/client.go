package anidb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"tetsu/internal/catalog"
	"tetsu/internal/config"
	"tetsu/internal/logging"
)

// Client is an AniDB UDP API session.
type Client struct {
	server        string
	username      string
	password      string
	clientName    string
	clientVersion int
	localPort     int
	timeout       time.Duration
	retries       int
	limiter       *rate.Limiter
	logger        *slog.Logger

	mu      sync.Mutex
	conn    *net.UDPConn
	session string
	tagSeq  atomic.Uint64
}

var _ catalog.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClientID overrides the registered client name and version.
func WithClientID(name string, version int) Option {
	return func(c *Client) {
		if name = strings.TrimSpace(name); name != "" {
			c.clientName = name
		}
		if version > 0 {
			c.clientVersion = version
		}
	}
}

// WithRequestInterval sets the minimum spacing between requests. Zero
// disables pacing.
func WithRequestInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithTimeout sets how long to wait for each reply.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetries sets how many times a timed out or busy request is resent.
func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}

// WithLocalPort binds the client to a fixed local UDP port.
func WithLocalPort(port int) Option {
	return func(c *Client) {
		if port >= 0 {
			c.localPort = port
		}
	}
}

// New creates a client for server (host:port). No packets are sent until
// the first request.
func New(server, username, password string, opts ...Option) (*Client, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, errors.New("anidb server address required")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("anidb username and password required")
	}
	client := &Client{
		server:        server,
		username:      username,
		password:      password,
		clientName:    "tetsu",
		clientVersion: 1,
		timeout:       10 * time.Second,
		retries:       2,
		limiter:       rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "anidb")
	return client, nil
}

// NewFromConfig builds a client from the [anidb] config section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	return New(cfg.AniDB.Server, cfg.AniDB.Username, cfg.AniDB.Password,
		WithLogger(logger),
		WithClientID(cfg.AniDB.Client, cfg.AniDB.ClientVersion),
		WithRequestInterval(cfg.RequestInterval()),
		WithTimeout(cfg.RequestTimeout()),
		WithRetries(cfg.AniDB.Retries),
		WithLocalPort(cfg.AniDB.LocalPort),
	)
}

// LoggedIn reports whether the client holds a session key.
func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != ""
}

// Login opens a session. Calling it while logged in is a no-op.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	if c.session != "" {
		return nil
	}
	r, err := c.exchangeLocked(ctx, "AUTH", []param{
		{"user", c.username},
		{"pass", c.password},
		{"protover", protocolVersion},
		{"client", c.clientName},
		{"clientver", strconv.Itoa(c.clientVersion)},
		{"enc", textEncoding},
	})
	if err != nil {
		return err
	}
	switch r.code {
	case codeLoginAccepted, codeLoginAcceptedNewVer:
	default:
		return c.unexpected("auth", r)
	}
	session, _, _ := strings.Cut(r.text, " ")
	if session == "" {
		return catalog.NewError(catalog.KindFatal, "anidb auth", r.code, fmt.Errorf("%w: missing session key", errMalformed))
	}
	c.session = session
	if r.code == codeLoginAcceptedNewVer {
		logging.WarnWithContext(c.logger, "anidb reports a newer client version", "anidb_client_outdated",
			logging.String(logging.FieldErrorHint, "update tetsu"),
			logging.String(logging.FieldImpact, "none until the old version is retired"))
	}
	c.logger.Info("anidb session opened", logging.String(logging.FieldEventType, "anidb_login"))
	return nil
}

// Logout ends the session. A server that already forgot the session is not
// an error.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == "" {
		return nil
	}
	r, err := c.exchangeLocked(ctx, "LOGOUT", []param{{"s", c.session}})
	c.session = ""
	if err != nil {
		return err
	}
	switch r.code {
	case codeLoggedOut, codeNotLoggedIn:
		c.logger.Info("anidb session closed", logging.String(logging.FieldEventType, "anidb_logout"))
		return nil
	default:
		return c.unexpected("logout", r)
	}
}

// Close releases the socket. It does not log out.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// call sends an authenticated command, logging in first when needed.
func (c *Client) call(ctx context.Context, command string, params []param) (reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loginLocked(ctx); err != nil {
		return reply{}, err
	}
	params = append(params, param{"s", c.session})
	return c.exchangeLocked(ctx, command, params)
}

func (c *Client) dialLocked() error {
	if c.conn != nil {
		return nil
	}
	raddr, err := net.ResolveUDPAddr("udp", c.server)
	if err != nil {
		return catalog.NewError(catalog.KindFatal, "anidb resolve", 0, err)
	}
	var laddr *net.UDPAddr
	if c.localPort > 0 {
		laddr = &net.UDPAddr{Port: c.localPort}
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return catalog.NewError(catalog.KindFatal, "anidb dial", 0, err)
	}
	c.conn = conn
	return nil
}

func (c *Client) nextTag() string {
	return "t" + strconv.FormatUint(c.tagSeq.Add(1), 10)
}

// exchangeLocked sends one command and waits for its reply, retrying
// timeouts and busy replies. Callers hold c.mu.
func (c *Client) exchangeLocked(ctx context.Context, command string, params []param) (reply, error) {
	if err := c.dialLocked(); err != nil {
		return reply{}, err
	}
	op := "anidb " + strings.ToLower(command)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return reply{}, err
		}
		tag := c.nextTag()
		started := time.Now()
		r, err := c.roundTrip(ctx, encodeRequest(command, params, tag), tag)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return reply{}, ctxErr
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = catalog.NewError(catalog.KindTransient, op, 0, err)
				c.logger.Debug("anidb request timed out",
					logging.String("command", command),
					logging.Int("attempt", attempt+1))
				continue
			}
			return reply{}, catalog.NewError(catalog.KindFatal, op, 0, err)
		}

		c.logger.Debug("anidb reply",
			logging.String("command", command),
			logging.Int("code", r.code),
			logging.Duration("latency", time.Since(started)))

		switch r.code {
		case codeServerBusy, codeTimeout:
			lastErr = catalog.NewError(catalog.KindTransient, op, r.code, errors.New(r.text))
			continue
		case codeLoginFailed, codeLoginFirst, codeAccessDenied, codeClientOutdated, codeClientBanned,
			codeIllegalInput, codeInvalidSession, codeBanned, codeUnknownCommand,
			codeInternalError, codeOutOfService:
			if r.code == codeLoginFirst || r.code == codeInvalidSession {
				c.session = ""
			}
			return reply{}, catalog.NewError(catalog.KindFatal, op, r.code, errors.New(r.text))
		}
		return r, nil
	}
	return reply{}, lastErr
}

// roundTrip writes one datagram and reads until a reply carrying tag (or an
// untagged server error) arrives. Replies to earlier tags are dropped.
func (c *Client) roundTrip(ctx context.Context, request, tag string) (reply, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if _, err := c.conn.Write([]byte(request)); err != nil {
		return reply{}, err
	}
	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return reply{}, err
	}
	if ctx.Err() != nil {
		return reply{}, ctx.Err()
	}

	buf := make([]byte, maxDatagramSize*4)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return reply{}, err
		}
		r, err := parseReply(string(buf[:n]))
		if err != nil {
			return reply{}, err
		}
		if r.tag == tag || r.tag == "" {
			return r, nil
		}
		c.logger.Debug("dropping stale anidb reply",
			logging.String("tag", r.tag),
			logging.String("want_tag", tag))
	}
}

func (c *Client) unexpected(op string, r reply) error {
	return catalog.NewError(catalog.KindFatal, "anidb "+op, r.code,
		fmt.Errorf("%w: unexpected reply %d %s", errMalformed, r.code, r.text))
}
