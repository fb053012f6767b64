// Package session implements the login/signup flow that authenticates a user before the chat view opens.
package session

import (
	"context"
	"desktop-messenger/internal/storage"
	"errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"strings"
	"sync"
)

var (
	ErrMissingFields    = errors.New("please fill in all fields")
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrPasswordMismatch = errors.New("passwords don't match")
	ErrEmailTaken       = errors.New("email already registered")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrWrongForm        = errors.New("action is not available on the current form")
)

// Form is the state of the flow
type Form int

const (
	LoginForm Form = iota
	SignupForm
	Authenticated
)

func (f Form) String() string {
	switch f {
	case LoginForm:
		return "login"
	case SignupForm:
		return "signup"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Accounts is the part of the store the flow depends on
type Accounts interface {
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	RegisterUser(ctx context.Context, u storage.NewUser) (storage.User, error)
	UpdateUserStatus(ctx context.Context, id int64, online bool) error
}

type Option interface {
	apply(*Flow)
}

type optionFunc func(f *Flow)

func (fn optionFunc) apply(f *Flow) { fn(f) }

// WithCost sets bcrypt cost used for new passwords, out of range values fall back to bcrypt.DefaultCost
func WithCost(cost int) Option {
	return optionFunc(func(f *Flow) {
		f.cost = ValidCost(cost)
	})
}

// Flow moves between LoginForm and SignupForm until a user authenticates
type Flow struct {
	logger    *zap.SugaredLogger
	accounts  Accounts
	onSuccess func(storage.User)
	cost      int

	mu   sync.Mutex
	form Form
	user storage.User
	// pending is set while a Login or Signup call owns the form
	pending bool
}

// New returns Flow in LoginForm state, onSuccess is called once a user authenticates and may be nil
func New(logger *zap.SugaredLogger, accounts Accounts, onSuccess func(storage.User), opts ...Option) *Flow {
	f := &Flow{
		logger:    logger,
		accounts:  accounts,
		onSuccess: onSuccess,
		cost:      bcrypt.DefaultCost,
		form:      LoginForm,
	}
	for _, opt := range opts {
		opt.apply(f)
	}
	return f
}

func (f *Flow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// User returns the authenticated user
func (f *Flow) User() (storage.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.form == Authenticated
}

// ShowSignup switches the login form to the signup form
func (f *Flow) ShowSignup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.form == LoginForm && !f.pending {
		f.form = SignupForm
	}
}

// ShowLogin switches the signup form back to the login form
func (f *Flow) ShowLogin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.form == SignupForm && !f.pending {
		f.form = LoginForm
	}
}

// Login checks credentials, marks the user online and completes the flow
func (f *Flow) Login(ctx context.Context, email, password string) (storage.User, error) {
	if err := f.begin(LoginForm); err != nil {
		return storage.User{}, err
	}
	defer f.end()

	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return storage.User{}, ErrMissingFields
	}

	u, err := f.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotExist) {
			return storage.User{}, ErrUserNotFound
		}
		return storage.User{}, err
	}

	if !VerifyPassword(u.PasswordHash, password) {
		f.logger.Infof("Rejected login for user (id: %d): wrong password", u.ID)
		return storage.User{}, ErrWrongPassword
	}

	if err := f.accounts.UpdateUserStatus(ctx, u.ID, true); err != nil {
		return storage.User{}, err
	}
	u.IsOnline = true

	f.logger.Infof("User (id: %d) logged in", u.ID)
	f.authenticate(u)

	return u, nil
}

// SignupRequest carries the signup form fields
type SignupRequest struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (r SignupRequest) trimmed() SignupRequest {
	return SignupRequest{
		FirstName:       strings.TrimSpace(r.FirstName),
		LastName:        strings.TrimSpace(r.LastName),
		Email:           strings.TrimSpace(r.Email),
		Password:        strings.TrimSpace(r.Password),
		ConfirmPassword: strings.TrimSpace(r.ConfirmPassword),
	}
}

// Signup creates an account that is online from the start and completes the flow
func (f *Flow) Signup(ctx context.Context, req SignupRequest) (storage.User, error) {
	if err := f.begin(SignupForm); err != nil {
		return storage.User{}, err
	}
	defer f.end()

	req = req.trimmed()
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return storage.User{}, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return storage.User{}, ErrPasswordMismatch
	}

	_, err := f.accounts.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return storage.User{}, ErrEmailTaken
	case !errors.Is(err, storage.ErrUserNotExist):
		return storage.User{}, err
	}

	hash, err := HashPassword(req.Password, f.cost)
	if err != nil {
		return storage.User{}, err
	}

	u, err := f.accounts.RegisterUser(ctx, storage.NewUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return storage.User{}, ErrEmailTaken
		}
		return storage.User{}, err
	}

	f.logger.Infof("User (id: %d) signed up", u.ID)
	f.authenticate(u)

	return u, nil
}

// Logout marks the authenticated user offline and returns to the login form
func (f *Flow) Logout(ctx context.Context) error {
	f.mu.Lock()
	if f.form != Authenticated {
		f.mu.Unlock()
		return ErrNotAuthenticated
	}
	u := f.user
	f.mu.Unlock()

	if err := f.accounts.UpdateUserStatus(ctx, u.ID, false); err != nil {
		return err
	}

	f.mu.Lock()
	f.form = LoginForm
	f.user = storage.User{}
	f.mu.Unlock()

	f.logger.Infof("User (id: %d) logged out", u.ID)

	return nil
}

// begin claims the flow for one Login or Signup call started from form
func (f *Flow) begin(form Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.form != form || f.pending {
		return ErrWrongForm
	}
	f.pending = true
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.pending = false
	f.mu.Unlock()
}

func (f *Flow) authenticate(u storage.User) {
	f.mu.Lock()
	f.form = Authenticated
	f.user = u
	f.mu.Unlock()

	if f.onSuccess != nil {
		f.onSuccess(u)
	}
}
