// Package session holds the authenticated identity and its bearer credential,
// and persists both in the cookie jar.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"taskdash/internal/service"
	"taskdash/internal/storage"
)

const (
	// TokenCookie holds the bearer credential.
	TokenCookie = "accessToken"

	// UserCookie holds the JSON-encoded identity.
	UserCookie = "user"

	// CredentialTTL is how long both cookies live after a login.
	CredentialTTL = 7 * 24 * time.Hour
)

var (
	// ErrLoginFailed is returned for every failed login, whatever the cause.
	ErrLoginFailed = errors.New("login failed")

	// ErrSignupFailed is returned for every failed registration.
	ErrSignupFailed = errors.New("signup failed")

	// ErrNotLoggedIn is returned by Token when there is no session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// State is the authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Jar is the durable storage the Store persists to.
type Jar interface {
	Get(ctx context.Context, name string) (storage.Cookie, error)
	SetAll(ctx context.Context, cookies ...storage.Cookie) error
	Remove(ctx context.Context, names ...string) error
}

// Store owns the current Identity and Credential.
// It is safe for concurrent use; the lock is never held across network calls.
type Store struct {
	jar  Jar
	auth service.Authenticator
	log  *log.Logger
	now  func() time.Time

	mu       sync.RWMutex
	identity *service.Identity
	token    string
	expires  time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the debug logger. Failure causes are only reported here.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used to compute cookie expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates a Store and restores a previously persisted session from jar.
// The Store starts Anonymous unless both cookies are present and unexpired.
func Open(ctx context.Context, jar Jar, auth service.Authenticator, opts ...Option) *Store {
	s := &Store{
		jar:  jar,
		auth: auth,
		log:  log.New(io.Discard, "", 0),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	tok, err := s.jar.Get(ctx, TokenCookie)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Printf("session: read credential: %v", err)
		}
		s.dropOrphan(ctx, UserCookie)
		return
	}
	user, err := s.jar.Get(ctx, UserCookie)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Printf("session: read identity: %v", err)
		}
		// A credential without an identity grants nothing.
		s.dropOrphan(ctx, TokenCookie)
		return
	}

	var id service.Identity
	if err := json.Unmarshal([]byte(user.Value), &id); err != nil {
		s.log.Printf("session: decode identity: %v", err)
		s.dropOrphan(ctx, TokenCookie, UserCookie)
		return
	}
	if !identified(id) {
		s.log.Printf("session: stored identity is empty")
		s.dropOrphan(ctx, TokenCookie, UserCookie)
		return
	}

	s.mu.Lock()
	s.identity = &id
	s.token = tok.Value
	s.expires = tok.Expires
	s.mu.Unlock()
	s.log.Printf("session: restored %s", id.Email)
}

// identified reports whether id names a user. An Authenticated session
// always has one.
func identified(id service.Identity) bool {
	return id.ID != "" || id.Email != ""
}

func (s *Store) dropOrphan(ctx context.Context, names ...string) {
	if err := s.jar.Remove(ctx, names...); err != nil {
		s.log.Printf("session: remove %v: %v", names, err)
	}
}

// Login authenticates against the API. On success the credential and
// identity are written to the jar (both or neither) and become current.
// On failure nothing changes and ErrLoginFailed is returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.Printf("session: login %s: %v", email, err)
		return ErrLoginFailed
	}

	id := res.User
	s.enrichFromToken(&id, res.AccessToken)
	if !identified(id) {
		s.log.Printf("session: login %s: response has no user", email)
		return ErrLoginFailed
	}

	data, err := json.Marshal(id)
	if err != nil {
		s.log.Printf("session: encode identity: %v", err)
		return ErrLoginFailed
	}

	expires := s.now().Add(CredentialTTL)
	err = s.jar.SetAll(ctx,
		storage.Cookie{
			Name:     TokenCookie,
			Value:    res.AccessToken,
			Expires:  expires,
			Secure:   true,
			SameSite: storage.SameSiteStrict,
		},
		storage.Cookie{
			Name:     UserCookie,
			Value:    string(data),
			Expires:  expires,
			Secure:   true,
			SameSite: storage.SameSiteStrict,
		},
	)
	if err != nil {
		s.log.Printf("session: persist: %v", err)
		return ErrLoginFailed
	}

	s.mu.Lock()
	s.identity = &id
	s.token = res.AccessToken
	s.expires = expires
	s.mu.Unlock()
	s.log.Printf("session: logged in as %s (admin=%v)", id.Email, id.IsAdmin())
	return nil
}

// enrichFromToken fills the identifier and groups from the token's claims
// when the user object omits them. The token is not verified; the server
// remains the authority on every request.
func (s *Store) enrichFromToken(id *service.Identity, token string) {
	if id.ID == "" && id.Username != "" {
		id.ID = id.Username
	}
	if id.ID != "" && len(id.Groups) > 0 {
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.log.Printf("session: token is not a jwt: %v", err)
		return
	}
	if id.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			id.ID = sub
		}
	}
	if len(id.Groups) == 0 {
		id.Groups = stringsClaim(claims, "cognito:groups")
		if len(id.Groups) == 0 {
			id.Groups = stringsClaim(claims, "groups")
		}
	}
}

func stringsClaim(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// Signup registers an account. It never changes the session.
func (s *Store) Signup(ctx context.Context, email, password, firstname, role string) error {
	err := s.auth.Register(ctx, service.Registration{
		Email:     email,
		Password:  password,
		Firstname: firstname,
		Role:      role,
	})
	if err != nil {
		s.log.Printf("session: signup %s: %v", email, err)
		return ErrSignupFailed
	}
	return nil
}

// Logout clears the session from the jar and from memory. It is idempotent
// and always succeeds; storage errors are logged.
func (s *Store) Logout(ctx context.Context) {
	if err := s.jar.Remove(ctx, TokenCookie, UserCookie); err != nil {
		s.log.Printf("session: logout: %v", err)
	}

	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.expires = time.Time{}
	s.mu.Unlock()
}

// Current returns a copy of the current identity, or nil when anonymous.
func (s *Store) Current() *service.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	id.Groups = append([]string(nil), s.identity.Groups...)
	return &id
}

// State returns the authentication state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity != nil && s.token != "" {
		return Authenticated
	}
	return Anonymous
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	return s.State() == Authenticated
}

// Token implements oauth2.TokenSource so API clients can draw the bearer
// credential from the live session.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil || s.token == "" {
		return nil, ErrNotLoggedIn
	}
	return &oauth2.Token{
		AccessToken: s.token,
		TokenType:   "Bearer",
		Expiry:      s.expires,
	}, nil
}
