package commands

import (
	"FieldScribe/internal/cli/api"
	"FieldScribe/internal/config"
	"context"
	"fmt"
	"net/http"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and log in" }
func (registerCmd) Usage() string       { return "register <username> <email> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	client, store := newClient(cfg)
	req := RegisterRequest{Username: args[0], Email: args[1], Password: args[2]}
	resp, err := client.JSON(ctx, http.MethodPost, "/api/user/register", req, nil)
	if err != nil {
		return err
	}
	if err := api.PersistAuthFromResponse(resp, store); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintf(Out, "Registered %s\n", req.Username)
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
