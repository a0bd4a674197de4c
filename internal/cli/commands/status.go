package commands

import (
	"FieldScribe/internal/cli/api"
	"FieldScribe/internal/config"
	"context"
	"fmt"
	"net/http"
)

type meResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show the logged-in user" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	client, _ := newClient(cfg)
	var me meResponse
	_, err := client.JSON(ctx, http.MethodGet, "/api/user/me", nil, &me)
	if api.IsStatus(err, http.StatusUnauthorized) {
		fmt.Fprintln(Out, "Status: anonymous")
		return nil
	}
	if err != nil {
		return err
	}
	role := "user"
	if me.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(Out, "Status: %s <%s> (%s, id=%d)\n", me.Username, me.Email, role, me.ID)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
