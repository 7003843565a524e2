package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cloudopshq/cloudops-go/credentials"
	"github.com/cloudopshq/cloudops-go/credentials/storefakes"
	"github.com/cloudopshq/cloudops-go/internal/config"
	apperrors "github.com/cloudopshq/cloudops-go/internal/errors"
	"github.com/cloudopshq/cloudops-go/session"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// app wires the session layer together for one CLI invocation. The session
// controller is built here and passed down explicitly; nothing reaches for
// global state.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   credentials.Store
	api     *transport.Client
	session *session.Controller
}

func newApp(configPath string, overrideURL string, noPersist bool) (*app, error) {
	if configPath == "" {
		if defaultPath, err := config.DefaultFilePath(); err == nil {
			configPath = defaultPath
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] loading configuration")
	}
	if overrideURL != "" {
		cfg.APIBaseURL = overrideURL
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var store credentials.Store
	if noPersist {
		store = storefakes.NewFakeStore()
	} else {
		credentialsPath := cfg.CredentialsPath
		if credentialsPath == "" {
			credentialsPath, err = credentials.DefaultPath()
			if err != nil {
				return nil, errors.Wrap(err, "[newApp] resolving credentials path")
			}
		}
		store, err = credentials.NewFileStore(credentialsPath)
		if err != nil {
			return nil, err
		}
	}

	api, err := transport.New(cfg.APIBaseURL, store,
		transport.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		transport.WithLogger(logger),
		transport.WithSessionExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Please run `cloudops login` again.")
		}),
	)
	if err != nil {
		return nil, err
	}

	controller, err := session.NewController(api, store, session.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		api:     api,
		session: controller,
	}, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "[newLogger] invalid log level %q", level)
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger(), nil
}

// requireSession restores the session from the stored credentials and fails
// with a friendly message when there is none.
func (a *app) requireSession(ctx context.Context) (*session.Profile, error) {
	if a.session.Restore(ctx) != session.Authenticated {
		return nil, errors.Wrap(apperrors.ErrNotAuthenticated, "run `cloudops login` first")
	}
	return a.session.Profile(), nil
}
