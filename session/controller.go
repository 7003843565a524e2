// Package session owns the authenticated-user record. A Controller is
// constructed explicitly and injected wherever the login state matters;
// there is no ambient global session.
package session

import (
	"context"
	"sync"

	"github.com/cloudopshq/cloudops-go/credentials"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Status is the session lifecycle state.
type Status int

const (
	// Initializing is the state before Restore has decided either way.
	Initializing Status = iota
	// Unauthenticated means no profile is held; protected surfaces must not render.
	Unauthenticated
	// Authenticated means a profile is held and requests carry a bearer token.
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Profile is the authenticated user record returned by the profile endpoint.
type Profile struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       Role   `json:"role"`
	IsActive   bool   `json:"is_active"`
	EmployeeID *int64 `json:"employee_id"`
}

// FullName returns the user's display name.
func (p *Profile) FullName() string {
	if p.FirstName == "" {
		return p.Username
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Controller is the single source of truth for who is logged in.
type Controller struct {
	api    *transport.Client
	creds  credentials.Store
	logger zerolog.Logger

	lock    sync.RWMutex
	status  Status
	profile *Profile
	subs    []func(Status)
}

// ControllerOption modifies a Controller during construction.
type ControllerOption func(*Controller)

// WithLogger sets the structured logger for session transitions.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller in the Initializing state. Call
// Restore to settle into Authenticated or Unauthenticated.
func NewController(api *transport.Client, creds credentials.Store, options ...ControllerOption) (*Controller, error) {
	if api == nil {
		return nil, errors.New("[NewController] transport client is required")
	}
	if creds == nil {
		return nil, errors.New("[NewController] credential store is required")
	}

	controller := &Controller{
		api:    api,
		creds:  creds,
		logger: zerolog.Nop(),
		status: Initializing,
	}
	for _, opt := range options {
		opt(controller)
	}
	return controller, nil
}

// Restore reconstructs the session from the credential store. With no
// stored token it settles Unauthenticated without a network call; with one
// it attempts a profile fetch, clearing the store if the fetch fails.
func (c *Controller) Restore(ctx context.Context) Status {
	if c.creds.Access() == "" {
		c.transition(Unauthenticated, nil)
		return Unauthenticated
	}

	var profile Profile
	if err := c.api.Get(ctx, "/auth/profile/", &profile); err != nil {
		c.logger.Debug().Err(err).Msg("stored token rejected, starting unauthenticated")
		_ = c.creds.Clear()
		c.transition(Unauthenticated, nil)
		return Unauthenticated
	}

	c.transition(Authenticated, &profile)
	return Authenticated
}

// Login submits credentials, stores the returned token pair and fetches the
// profile. Failures propagate untouched: a *transport.APIError whose
// TwoFactorRequired method reports true means the caller should collect a
// one-time passcode and call Login again with it.
func (c *Controller) Login(ctx context.Context, email, password, otp string) (*Profile, error) {
	var pair tokenPair
	err := c.api.Post(ctx, "/auth/login/", loginRequest{Email: email, Password: password, OTP: otp}, &pair)
	if err != nil {
		return nil, err
	}
	if err := c.creds.Set(pair.Access, pair.Refresh); err != nil {
		return nil, errors.Wrap(err, "[Controller.Login] storing token pair")
	}

	var profile Profile
	if err := c.api.Get(ctx, "/auth/profile/", &profile); err != nil {
		return nil, errors.Wrap(err, "[Controller.Login] fetching profile")
	}

	c.transition(Authenticated, &profile)
	c.logger.Info().Str("role", string(profile.Role)).Msg("logged in")
	return &profile, nil
}

// Logout clears the credential store and drops the profile. Synchronous,
// no network call, safe to call when already Unauthenticated.
func (c *Controller) Logout() {
	_ = c.creds.Clear()

	c.lock.Lock()
	alreadyOut := c.status == Unauthenticated
	c.lock.Unlock()
	if alreadyOut {
		return
	}

	c.transition(Unauthenticated, nil)
	c.logger.Info().Msg("logged out")
}

// Status returns the current session state.
func (c *Controller) Status() Status {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.status
}

// Profile returns a copy of the authenticated user record, or nil when not
// Authenticated.
func (c *Controller) Profile() *Profile {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.profile == nil {
		return nil
	}
	copied := *c.profile
	return &copied
}

// OnChange registers a subscriber invoked on every status transition. The
// idle monitor and notification poller follow the session through this.
func (c *Controller) OnChange(fn func(Status)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *Controller) transition(status Status, profile *Profile) {
	c.lock.Lock()
	c.status = status
	c.profile = profile
	subs := make([]func(Status), len(c.subs))
	copy(subs, c.subs)
	c.lock.Unlock()

	for _, fn := range subs {
		fn(status)
	}
}
