package commands

import (
	"FieldScribe/internal/config"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type entryDTO struct {
	ID          int64     `json:"id"`
	Project     string    `json:"project"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Context     string    `json:"context"`
	Observation string    `json:"observation"`
	Reflection  string    `json:"reflection"`
	CreatedAt   time.Time `json:"created_at"`
	Shared      bool      `json:"shared"`
	ShareURL    string    `json:"share_url"`
	Tags        []struct {
		Name string `json:"name"`
	} `json:"tags"`
	Media []struct {
		ID           int64  `json:"id"`
		OriginalName string `json:"original_name"`
		MediaType    string `json:"media_type"`
	} `json:"media"`
}

func (e entryDTO) tagList() string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

type entriesCmd struct{}

func (entriesCmd) Name() string        { return "entries" }
func (entriesCmd) Description() string { return "List your entries, newest first" }
func (entriesCmd) Usage() string       { return "entries [page] [page_size]" }

func (entriesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	q := url.Values{}
	for i, name := range []string{"page", "page_size"} {
		if i < len(args) {
			if _, err := strconv.Atoi(args[i]); err != nil {
				return ErrUsage
			}
			q.Set(name, args[i])
		}
	}
	path := "/api/entries"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	client, _ := newClient(cfg)
	var page struct {
		Entries  []entryDTO `json:"entries"`
		Page     int        `json:"page"`
		PageSize int        `json:"page_size"`
		Total    int64      `json:"total"`
	}
	if _, err := client.JSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return err
	}
	if len(page.Entries) == 0 {
		fmt.Fprintln(Out, "No entries")
		return nil
	}
	for _, e := range page.Entries {
		shared := ""
		if e.Shared {
			shared = " (shared)"
		}
		fmt.Fprintf(Out, "- %d  [%s] %s  %s%s\n", e.ID, e.Project, e.Title, e.CreatedAt.Local().Format("2006-01-02 15:04"), shared)
	}
	fmt.Fprintf(Out, "Page %d, %d of %d entries\n", page.Page, len(page.Entries), page.Total)
	return nil
}

type entryGetCmd struct{}

func (entryGetCmd) Name() string        { return "entry-get" }
func (entryGetCmd) Description() string { return "Show one entry" }
func (entryGetCmd) Usage() string       { return "entry-get <id>" }

func (entryGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, _ := newClient(cfg)
	var e entryDTO
	if _, err := client.JSON(ctx, http.MethodGet, "/api/entries/"+id, nil, &e); err != nil {
		return err
	}
	printEntry(Out, e)
	return nil
}

type entryAddCmd struct{}

func (entryAddCmd) Name() string { return "entry-add" }
func (entryAddCmd) Description() string {
	return "Add an entry, optionally with tags and a media file"
}
func (entryAddCmd) Usage() string {
	return "entry-add [-tags a,b] [-file path] [-location l] [-context c] [-reflection r] <project> <title> <observation>"
}

func (entryAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("entry-add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	tags := fs.String("tags", "", "comma-separated tags")
	file := fs.String("file", "", "png, jpg, gif, mp3 or mp4 file")
	location := fs.String("location", "", "where the observation was made")
	contextText := fs.String("context", "", "context")
	reflection := fs.String("reflection", "", "reflection")
	if err := fs.Parse(args); err != nil || fs.NArg() != 3 {
		return ErrUsage
	}

	fields := map[string]string{
		"project":     fs.Arg(0),
		"title":       fs.Arg(1),
		"observation": fs.Arg(2),
		"tags":        *tags,
		"location":    *location,
		"context":     *contextText,
		"reflection":  *reflection,
	}
	client, _ := newClient(cfg)
	var e entryDTO
	if err := client.PostMultipart(ctx, "/api/entries", fields, *file, &e); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Created:")
	printEntry(Out, e)
	return nil
}

func printEntry(w io.Writer, e entryDTO) {
	fmt.Fprintf(w, "  id:          %d\n", e.ID)
	fmt.Fprintf(w, "  project:     %s\n", e.Project)
	fmt.Fprintf(w, "  title:       %s\n", e.Title)
	if e.Location != "" {
		fmt.Fprintf(w, "  location:    %s\n", e.Location)
	}
	fmt.Fprintf(w, "  created:     %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"))
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "  tags:        %s\n", e.tagList())
	}
	if e.Context != "" {
		fmt.Fprintf(w, "  context:     %s\n", e.Context)
	}
	fmt.Fprintf(w, "  observation: %s\n", e.Observation)
	if e.Reflection != "" {
		fmt.Fprintf(w, "  reflection:  %s\n", e.Reflection)
	}
	for _, m := range e.Media {
		fmt.Fprintf(w, "  media:       %d %s (%s)\n", m.ID, m.OriginalName, m.MediaType)
	}
	if e.Shared {
		fmt.Fprintf(w, "  share url:   %s\n", e.ShareURL)
	}
}

// parseID проверяет, что идентификатор — положительное число.
func parseID(s string) (string, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return "", ErrUsage
	}
	return strconv.FormatInt(n, 10), nil
}

func init() {
	RegisterCmd(entriesCmd{})
	RegisterCmd(entryGetCmd{})
	RegisterCmd(entryAddCmd{})
}
