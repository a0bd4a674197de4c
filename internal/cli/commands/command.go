package commands

import (
	"FieldScribe/internal/cli/api"
	fsrepo "FieldScribe/internal/cli/repo/fs"
	"FieldScribe/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
)

// ErrUsage — неверные аргументы, диспетчер покажет строку Usage команды.
var ErrUsage = errors.New("usage")

// Command — подкоманда CLI.
type Command interface {
	// Name — имя, которое вводит пользователь, например "login".
	Name() string
	Description() string
	// Usage — строка вызова без имени программы.
	Usage() string
	// Run получает аргументы без имени команды.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, в тестах переназначается.
var Out io.Writer = os.Stdout

// RegisterCmd добавляет команду в реестр; вызывается из init() файла команды.
func RegisterCmd(cmd Command) {
	registry[strings.ToLower(cmd.Name())] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[strings.ToLower(name)]
	return c, ok
}

// List возвращает команды, отсортированные по имени.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage собирает общую справку по всем командам.
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("FieldScribe CLI\n\n")
	b.WriteString("Usage:\n  fscli [-base-url <host:port>] [-https] [-token-file <path>] <command> [args]\n\n")
	b.WriteString("Commands:\n")
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, c := range List() {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Name(), c.Description())
	}
	_ = tw.Flush()
	b.WriteString("\nRun 'fscli help <command>' for the full usage of a command.\n")
	return b.String()
}

// newClient собирает HTTP-клиент с токеном из файла конфигурации.
func newClient(cfg *config.Config) (*api.Client, fsrepo.AuthFSStore) {
	store := fsrepo.NewAuthFSStore(cfg.TokenFile)
	return api.NewClient(cfg.ServerURL, store), store
}
