package controller

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/display"
	"go.uber.org/zap"
)

var preAuthMenu = display.Menu{
	Title: "Epic Events CRM",
	Options: []display.MenuOption{
		{Key: "1", Label: "Login"},
		{Key: "0", Label: "Quit"},
	},
}

// App is the interactive loop: pre-authentication menu, then the role menu of
// the logged in user until logout
type App struct {
	login   *auth.LoginFlow
	session *auth.Session
	router  *Router
	sink    display.Sink
	logger  *zap.Logger
}

func NewApp(login *auth.LoginFlow, session *auth.Session, router *Router, sink display.Sink, logger *zap.Logger) *App {
	return &App{login: login, session: session, router: router, sink: sink, logger: logger}
}

// Run resumes a persisted session if there is one and serves menus until the
// user quits or input ends
func (a *App) Run(ctx context.Context) error {
	a.login.Resume(ctx)

	for {
		var err error
		if a.session.Authenticated() {
			err = a.serve(ctx)
		} else {
			var quit bool
			quit, err = a.welcome(ctx)
			if err == nil && quit {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			a.logger.Info("input closed")
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// welcome shows the pre-authentication menu and handles one selection
func (a *App) welcome(ctx context.Context) (quit bool, _ error) {
	a.sink.Show(preAuthMenu)
	answer, err := a.sink.Prompt("Choice:")
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(answer) {
	case "0":
		a.sink.Show(display.Info("Goodbye."))
		return true, nil
	case "1":
		_, err := a.login.Authenticate(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return false, err
		case errors.Is(err, auth.ErrTooManyAttempts):
			a.sink.ShowError(capitalize(auth.ErrTooManyAttempts.Error()))
		case errors.Is(err, auth.ErrUserNoRole):
		default:
			a.logger.Error("login failed", zap.Error(err))
			a.sink.ShowError(MsgUnexpected)
		}
	default:
		a.sink.ShowError(MsgInvalidInput)
	}
	return false, nil
}

// serve runs the role menu of the session user until logout
func (a *App) serve(ctx context.Context) error {
	user := a.session.User()
	a.sink.Show(display.Welcome{User: user})
	menu := RoleMenu(user)

	for {
		a.sink.Show(menu)
		answer, err := a.sink.Prompt("Choice:")
		if err != nil {
			return err
		}
		op, err := a.router.Dispatch(a.session.Context(ctx), user, answer)
		if err != nil {
			return err
		}
		if op == auth.OpLogout {
			return a.logout(ctx)
		}
	}
}

func (a *App) logout(ctx context.Context) error {
	discard, err := confirm(a.sink, "Discard your saved session?")
	if err != nil {
		return err
	}
	if err := a.login.Logout(ctx, !discard); err != nil {
		a.logger.Warn("failed to discard token", zap.Error(err))
	}
	a.sink.Show(display.Info("Logged out."))
	return nil
}
