package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// Provider reports who is signed in.
type Provider interface {
	CurrentUser() *models.User
	IsAuthenticated() bool
}

// UserStore is the subset of [repositories.UserRepository] the auth service needs.
type UserStore interface {
	Create(user *models.User) error
	Get(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// Credentials holds registration input.
type Credentials struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Session is the persisted sign-in record.
type Session struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthService implements [Provider] with local accounts.
type AuthService struct {
	users  UserStore
	store  storage.Store
	logger *log.Logger
	cost   int

	mu      sync.RWMutex
	user    *models.User
	session *Session
}

// NewAuthService creates an AuthService. Call [AuthService.Restore] to pick up a saved session.
func NewAuthService(users UserStore, store storage.Store, logger *log.Logger) *AuthService {
	return &AuthService{users: users, store: store, logger: logger, cost: bcrypt.DefaultCost}
}

// SetHashCost changes the bcrypt cost used for new password hashes.
func (a *AuthService) SetHashCost(cost int) {
	a.cost = cost
}

// Register validates creds, creates the account and signs it in.
func (a *AuthService) Register(ctx context.Context, creds Credentials) (*models.User, error) {
	if creds.Password != creds.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", shared.ErrInvalidInput)
	}
	if len(creds.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}
	if !models.ValidEmail(creds.Email) {
		return nil, fmt.Errorf("%w: please enter a valid email address", shared.ErrInvalidInput)
	}

	if _, err := a.users.GetByEmail(creds.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserExists, creds.Email)
	} else if !errors.Is(err, shared.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := creds.Name
	if name == "" {
		name = creds.Email
	}

	user := models.NewUser(0, creds.Email, name)
	user.SetPasswordHash(string(hash))

	if err := a.users.Create(user); err != nil {
		return nil, err
	}

	if err := a.startSession(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("account created", "user", user.Email())
	return user, nil
}

// Login verifies the password and signs the user in.
//
// Unknown emails and wrong passwords both return [shared.ErrAuthFailed].
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetByEmail(email)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", shared.ErrAuthFailed)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", shared.ErrAuthFailed)
	}

	if err := a.startSession(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("signed in", "user", user.Email())
	return user, nil
}

// Logout clears the in-memory and persisted session.
func (a *AuthService) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.user = nil
	a.session = nil
	a.mu.Unlock()

	if err := a.store.Remove(ctx, storage.SessionKey); err != nil {
		return err
	}
	return nil
}

// Restore loads the persisted session, if any. A session pointing at a missing account is discarded.
func (a *AuthService) Restore(ctx context.Context) error {
	session, err := storage.GetJSON[*Session](ctx, a.store, storage.SessionKey)
	if err != nil {
		return err
	}
	if session == nil || session.UserID == "" {
		return nil
	}

	user, err := a.users.Get(session.UserID)
	if errors.Is(err, shared.ErrUserNotFound) {
		a.logger.Warn("discarding session for missing account", "user_id", session.UserID)
		return a.store.Remove(ctx, storage.SessionKey)
	}
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.user = user
	a.session = session
	a.mu.Unlock()
	return nil
}

// UpdateProfile changes the signed-in user's display name.
func (a *AuthService) UpdateProfile(name string) error {
	user := a.CurrentUser()
	if user == nil {
		return shared.ErrNotAuthenticated
	}

	user.SetName(name)
	return a.users.Update(user)
}

// UpdatePreferences replaces the signed-in user's preferences.
func (a *AuthService) UpdatePreferences(prefs models.Preferences) error {
	user := a.CurrentUser()
	if user == nil {
		return shared.ErrNotAuthenticated
	}

	user.SetPreferences(prefs)
	return a.users.Update(user)
}

// CurrentUser returns the signed-in user or nil.
func (a *AuthService) CurrentUser() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// IsAuthenticated reports whether a user is signed in.
func (a *AuthService) IsAuthenticated() bool {
	return a.CurrentUser() != nil
}

// Session returns a copy of the active session, or nil.
func (a *AuthService) Session() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

func (a *AuthService) startSession(ctx context.Context, user *models.User) error {
	session := &Session{UserID: user.ID(), Token: shared.GenerateID(), CreatedAt: time.Now()}

	if err := storage.SetJSON(ctx, a.store, storage.SessionKey, session); err != nil {
		return err
	}

	a.mu.Lock()
	a.user = user
	a.session = session
	a.mu.Unlock()
	return nil
}

// StaticProvider is a fixed [Provider]. A nil User means signed out.
type StaticProvider struct {
	User *models.User
}

// CurrentUser returns the fixed user.
func (p StaticProvider) CurrentUser() *models.User { return p.User }

// IsAuthenticated reports whether a user is set.
func (p StaticProvider) IsAuthenticated() bool { return p.User != nil }
