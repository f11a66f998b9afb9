// Package auth guards the admin pages with a password login and a signed
// session cookie.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	CookieName = "admin-auth"

	AdminPath = "/admin"
	LoginPath = "/admin/login"

	sessionSubject = "admin"
)

var (
	ErrNotConfigured   = errors.New("ADMIN_PASSWORD not set")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidSession  = errors.New("invalid session")
)

// Auth checks the admin password and issues session cookies holding an
// HS256 signed JWT.
type Auth struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Auth)

// WithSecureCookie marks session cookies Secure. Production servers set it.
func WithSecureCookie(secure bool) Option {
	return func(a *Auth) {
		a.secure = secure
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Auth) {
		a.log = logger
	}
}

// New creates an Auth. An empty secret is replaced with a random one, so
// sessions do not survive a restart.
func New(password, secret string, ttl time.Duration, opts ...Option) (*Auth, error) {
	a := &Auth{
		password: []byte(password),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if len(a.secret) == 0 {
		a.secret = make([]byte, 32)
		if _, err := rand.Read(a.secret); err != nil {
			return nil, errors.Wrap(err, "failed to generate session secret")
		}
		a.log.Debug("using a random session secret")
	}
	if a.ttl <= 0 {
		a.ttl = 24 * time.Hour
	}
	return a, nil
}

// CheckPassword compares password with the configured one in constant time.
func (a *Auth) CheckPassword(password string) error {
	if len(a.password) == 0 {
		return ErrNotConfigured
	}
	got := sha256.Sum256([]byte(password))
	expected := sha256.Sum256(a.password)
	if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// NewSession returns a signed session token.
func (a *Auth) NewSession() (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session")
	}
	return token, nil
}

// Verify reports whether token is an unexpired session signed with the
// secret.
func (a *Auth) Verify(token string) error {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return errors.Wrap(ErrInvalidSession, err.Error())
	}

	if claims.Subject != sessionSubject {
		return errors.Wrap(ErrInvalidSession, "unexpected subject")
	}
	if !claims.VerifyExpiresAt(a.now(), true) {
		return errors.Wrap(ErrInvalidSession, "session expired")
	}
	return nil
}

// Authenticated reports whether r carries a valid session cookie.
func (a *Auth) Authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	if err := a.Verify(cookie.Value); err != nil {
		a.log.Debug("rejected session", zap.Error(err))
		return false
	}
	return true
}

func (a *Auth) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
