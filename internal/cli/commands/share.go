package commands

import (
	"FieldScribe/internal/config"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
)

type shareCmd struct{}

func (shareCmd) Name() string        { return "share" }
func (shareCmd) Description() string { return "Publish a share link (or revoke it with -revoke)" }
func (shareCmd) Usage() string       { return "share [-revoke] <id>" }

func (shareCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("share", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	revoke := fs.Bool("revoke", false, "revoke the current link")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	client, _ := newClient(cfg)
	path := "/api/entries/" + id + "/share"
	if *revoke {
		if _, err := client.JSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Share link revoked")
		return nil
	}
	var out struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	if _, err := client.JSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Share link: %s\n", out.URL)
	return nil
}

type exportCmd struct{}

func (exportCmd) Name() string        { return "export" }
func (exportCmd) Description() string { return "Download an entry as PDF" }
func (exportCmd) Usage() string       { return "export <id> <file.pdf>" }

func (exportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, _ := newClient(cfg)
	_, data, err := client.Do(ctx, http.MethodGet, "/api/entries/"+id+"/export", nil, "")
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %s (%d bytes)\n", args[1], len(data))
	return nil
}

func init() {
	RegisterCmd(shareCmd{})
	RegisterCmd(exportCmd{})
}
