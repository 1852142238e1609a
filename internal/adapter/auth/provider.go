// Package auth is the email/password identity provider: accounts in Mongo,
// bcrypt password hashes, HS256 session tokens kept in local storage and
// state change notifications on a per-session auth.state NATS subject.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionKey is the local storage key of the signed-in session token.
const SessionKey = "auth:session"

const minPasswordLength = 6

type AccountStore interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// Bus carries auth state notifications between components.
type Bus interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Claims are the session token claims. The subject is the account ID.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Provider struct {
	accounts AccountStore
	local    domain.LocalStorage
	bus      Bus
	subject  string
	secret   []byte
	ttl      time.Duration
	logger   *logger.Logger
	now      func() time.Time

	// serializes sign-in/out so stored token and published state agree
	mu sync.Mutex
}

// NewProvider builds a provider for one client session. scope names that
// session on the bus; it is the same namespace that separates its local storage.
func NewProvider(accounts AccountStore, local domain.LocalStorage, bus Bus, scope, jwtSecret string, ttl time.Duration, log *logger.Logger) *Provider {
	return &Provider{
		accounts: accounts,
		local:    local,
		bus:      bus,
		subject:  domain.AuthStateSubject(scope),
		secret:   []byte(jwtSecret),
		ttl:      ttl,
		logger:   log,
		now:      time.Now,
	}
}

func (p *Provider) SignUp(ctx context.Context, name, email, password string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	verr := &domain.ValidationError{}
	if name == "" {
		verr.Add("name", "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		verr.Add("email", "enter a valid email")
	}
	if len(password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("password must have at least %d characters", minPasswordLength))
	}
	if !verr.Empty() {
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.NewValidationError("email", domain.ErrEmailTaken.Error())
		}
		p.logger.Error("Provider.SignUp: failed to create account", "email", email, "error", err.Error())
		return nil, domain.RemoteCallFailure("create account", err)
	}
	p.logger.Info("Provider.SignUp: account created", "uid", account.ID)

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startSession(ctx, account)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.RemoteCallFailure("find account", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		p.logger.Warn("Provider.SignIn: wrong password", "uid", account.ID)
		return nil, domain.ErrInvalidCredentials
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startSession(ctx, account)
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.local.Delete(ctx, SessionKey); err != nil {
		return domain.RemoteCallFailure("clear session", err)
	}
	p.notify(ctx, nil)
	return nil
}

// OnAuthStateChanged subscribes fn to this session's auth.state subject and
// then hands it the session restored from local storage, so fn always sees a first state.
func (p *Provider) OnAuthStateChanged(fn domain.AuthStateListener) (func(), error) {
	unsubscribe, err := p.bus.Subscribe(p.subject, func(data []byte) {
		var s *domain.Session
		if err := json.Unmarshal(data, &s); err != nil {
			p.logger.Warn("Provider.OnAuthStateChanged: ignoring malformed notification", "error", err.Error())
			return
		}
		fn(s)
	})
	if err != nil {
		return nil, err
	}
	fn(p.Current(context.Background()))
	return unsubscribe, nil
}

// Current returns the session stored in local storage, or nil when there is
// none or its token is no longer valid.
func (p *Provider) Current(ctx context.Context) *domain.Session {
	token, ok, err := p.local.Get(ctx, SessionKey)
	if err != nil {
		p.logger.Warn("Provider.Current: failed to read stored session", "error", err.Error())
		return nil
	}
	if !ok || token == "" {
		return nil
	}
	s, err := p.parse(token)
	if err != nil {
		p.logger.Info("Provider.Current: dropping stored session", "error", err.Error())
		_ = p.local.Delete(ctx, SessionKey)
		return nil
	}
	return s
}

// startSession must be called with mu held.
func (p *Provider) startSession(ctx context.Context, account *domain.Account) (*domain.Session, error) {
	now := p.now()
	claims := Claims{
		Name:  account.Name,
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	if err := p.local.Set(ctx, SessionKey, token); err != nil {
		return nil, domain.RemoteCallFailure("store session", err)
	}

	s := &domain.Session{UID: account.ID, DisplayName: account.Name, Email: account.Email, Token: token}
	p.notify(ctx, s)
	return s, nil
}

func (p *Provider) notify(ctx context.Context, s *domain.Session) {
	var payload *domain.Session
	if s != nil {
		c := *s
		c.Token = ""
		payload = &c
	}
	if err := p.bus.Publish(ctx, p.subject, payload); err != nil {
		p.logger.Warn("Provider.notify: failed to publish auth state", "error", err.Error())
	}
}

func (p *Provider) parse(tokenString string) (*domain.Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &domain.Session{UID: claims.Subject, DisplayName: claims.Name, Email: claims.Email, Token: tokenString}, nil
}

var _ domain.AuthProvider = (*Provider)(nil)
