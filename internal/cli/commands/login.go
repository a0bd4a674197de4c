package commands

import (
	"FieldScribe/internal/cli/api"
	"FieldScribe/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <username> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	client, store := newClient(cfg)
	resp, err := client.JSON(ctx, http.MethodPost, "/api/user/login", LoginRequest{Username: args[0], Password: args[1]}, nil)
	if api.IsStatus(err, http.StatusUnauthorized) {
		return errors.New("invalid username or password")
	}
	if err != nil {
		return err
	}
	if err := api.PersistAuthFromResponse(resp, store); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored auth cookie" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	client, store := newClient(cfg)
	// сервер только стирает cookie, локальный токен удаляем в любом случае
	if _, err := client.JSON(ctx, http.MethodPost, "/api/user/logout", nil, nil); err != nil {
		fmt.Fprintf(Out, "server logout failed: %v\n", err)
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
}
