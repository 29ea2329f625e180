package auth

import (
	"context"
	"errors"
	"time"

	"github.com/estatery/listings/internal/config"
	"github.com/estatery/listings/internal/models"
	"github.com/estatery/listings/internal/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Tokens is the issued credential pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
}

// Service implements the account lifecycle: registration, login with
// lockout, token refresh, logout and password changes. In demo mode tokens
// are opaque session references; otherwise they are signed JWTs with the
// refresh set persisted on the user record.
type Service struct {
	users    UserStore
	sessions SessionStore
	codec    codec
	demo     bool

	maxAttempts  int
	lockDuration time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// NewService builds an auth Service from configuration and stores. sessions
// may be nil when not running in demo mode.
func NewService(cfg *config.Config, users UserStore, sessions SessionStore) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		codec: codec{
			secret:        []byte(cfg.JWTSecret),
			refreshSecret: []byte(cfg.JWTRefreshSecret),
			accessTTL:     cfg.AccessTokenTTL,
			refreshTTL:    cfg.RefreshTokenTTL,
		},
		demo:         cfg.DemoMode(),
		maxAttempts:  cfg.MaxLoginAttempts,
		lockDuration: cfg.LockDuration,
		now:          time.Now,
	}
}

func hashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func checkPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Register creates an account and logs it in, returning the new user and its
// first token pair.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, Tokens, error) {
	role := in.Role
	if role == "" {
		role = models.RoleBuyer
	}
	if !models.ValidRole(role) {
		v := &types.ValidationError{}
		v.Add("role", "must be one of buyer, seller, agent, admin")
		return nil, Tokens{}, v
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, Tokens{}, err
	}

	now := s.now()
	u := &models.User{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hash,
		Role:      role,
		Phone:     in.Phone,
		IsActive:  true,
		LastLogin: &now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, Tokens{}, errUserExists()
		}
		return nil, Tokens{}, err
	}

	tokens, err := s.issue(ctx, u, now)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, tokens, nil
}

// Login verifies credentials and returns a fresh token pair. Failed attempts
// count toward a temporary lockout; a successful login resets the counter.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, Tokens, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, Tokens{}, errInvalidCredentials()
		}
		return nil, Tokens{}, err
	}

	now := s.now()
	if u.Locked(now) {
		return nil, Tokens{}, errAccountLocked()
	}
	if !u.IsActive {
		return nil, Tokens{}, errAccountDeactivated()
	}

	if !checkPassword(u.Password, password) {
		u.LoginAttempts++
		if u.LoginAttempts >= s.maxAttempts {
			until := now.Add(s.lockDuration)
			u.LockUntil = &until
			u.LoginAttempts = 0
		}
		if err := s.users.Update(ctx, u); err != nil {
			return nil, Tokens{}, err
		}
		return nil, Tokens{}, errInvalidCredentials()
	}

	// Expired lock and attempt counters clear on success.
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = &now

	tokens, err := s.issue(ctx, u, now)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, tokens, nil
}

// issue creates a token pair. In demo mode it opens a session; otherwise it
// signs a pair and appends the refresh token to the user's active set,
// persisting the user.
func (s *Service) issue(ctx context.Context, u *models.User, now time.Time) (Tokens, error) {
	if s.demo {
		sess, err := s.sessions.Create(ctx, u.ID)
		if err != nil {
			return Tokens{}, err
		}
		if err := s.users.Update(ctx, u); err != nil {
			return Tokens{}, err
		}
		return demoTokens(sess.ID), nil
	}

	access, err := s.codec.signAccess(u, now)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.codec.signRefresh(u, now)
	if err != nil {
		return Tokens{}, err
	}

	u.RefreshTokens = append(u.RefreshTokens, models.RefreshToken{Token: refresh, CreatedAt: now})
	if err := s.users.Update(ctx, u); err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself stays valid until its own expiry or revocation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, errInvalidRefreshToken()
	}

	info, err := s.codec.decode(refreshToken, tokenTypeRefresh)
	if err != nil {
		if errors.Is(err, errTokenHasExpired) {
			return Tokens{}, errRefreshTokenExpired()
		}
		return Tokens{}, errInvalidRefreshToken()
	}
	if info.Type != tokenTypeRefresh {
		return Tokens{}, errInvalidRefreshToken()
	}

	if info.Opaque {
		sess, err := s.sessions.Get(ctx, info.SessionID)
		if err != nil {
			return Tokens{}, errInvalidRefreshToken()
		}
		s.sessions.Touch(ctx, sess.ID)
		return demoTokens(sess.ID), nil
	}

	u, err := s.users.GetByID(ctx, info.UserID)
	if err != nil {
		return Tokens{}, errInvalidRefreshToken()
	}
	if !u.IsActive {
		return Tokens{}, errAccountDeactivated()
	}
	if !u.HasRefreshToken(refreshToken) {
		// Revoked by logout or password change.
		return Tokens{}, errInvalidRefreshToken()
	}

	access, err := s.codec.signAccess(u, s.now())
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Logout revokes one refresh token (one device). Unknown tokens are a no-op:
// logout is idempotent.
func (s *Service) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	info, err := s.codec.decode(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil
	}

	if info.Opaque {
		return s.sessions.Delete(ctx, info.SessionID)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil
	}
	kept := u.RefreshTokens[:0]
	for _, rt := range u.RefreshTokens {
		if rt.Token != refreshToken {
			kept = append(kept, rt)
		}
	}
	if len(kept) == len(u.RefreshTokens) {
		return nil
	}
	u.RefreshTokens = kept
	return s.users.Update(ctx, u)
}

// LogoutAll revokes every refresh token for the user and returns how many
// credentials were invalidated.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int, error) {
	if s.demo {
		return s.sessions.DeleteAllForUser(ctx, userID)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := len(u.RefreshTokens)
	u.RefreshTokens = models.RefreshTokenList{}
	if err := s.users.Update(ctx, u); err != nil {
		return 0, err
	}
	return n, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every outstanding refresh token so other devices must log in again.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(u.Password, current) {
		return &types.APIError{
			Status:  401,
			Message: "Current password is incorrect.",
			Code:    "INVALID_CREDENTIALS",
		}
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	u.Password = hash
	u.RefreshTokens = models.RefreshTokenList{}
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	if s.demo {
		_, err = s.sessions.DeleteAllForUser(ctx, userID)
	}
	return err
}

// Authenticate resolves a bearer token into a Principal. Every failure mode
// has a distinct code so clients can tell expiry from revocation.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, errNoToken()
	}

	info, err := s.codec.decode(token, tokenTypeAccess)
	if err != nil {
		if errors.Is(err, errTokenHasExpired) {
			return nil, errTokenExpired()
		}
		return nil, errInvalidToken()
	}
	if info.Type != tokenTypeAccess {
		return nil, errInvalidTokenType()
	}

	userID := info.UserID
	if info.Opaque {
		sess, err := s.sessions.Get(ctx, info.SessionID)
		if err != nil {
			return nil, errInvalidToken()
		}
		s.sessions.Touch(ctx, sess.ID)
		userID = sess.UserID
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errUserNotFound()
	}
	if !u.IsActive {
		return nil, errAccountDeactivated()
	}
	if u.Locked(s.now()) {
		return nil, errAccountLocked()
	}

	return &Principal{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, nil
}

// Authorize checks the principal's role against an allow list. An empty list
// allows any authenticated principal.
func (s *Service) Authorize(p *Principal, roles ...string) error {
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return errInsufficientPermissions(roles)
}

// Users exposes the underlying store for the admin handlers.
func (s *Service) Users() UserStore {
	return s.users
}
