package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lexicon/internal"
	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/checksum"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/termservice"
	pkgconfig "github.com/starford/lexicon/pkg/config"
)

var version = "dev"

// cliApp holds per-invocation state shared by the subcommands.
type cliApp struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *internal.Config
	logger *slog.Logger
	rt     *internal.Runtime
}

func (a *cliApp) loadConfig(cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Vocabulary.Root = root
	}
	a.cfg = cfg
	a.logger = internal.NewLogger(a.stderr, cfg.App.LogLevel, false)
	return nil
}

// prepare loads config and readies the vocabulary root before a term
// command runs.
func (a *cliApp) prepare(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	return a.bootstrap(ctx, cmd, true)
}

// prepareLookup is prepare for commands that only read the tree. The journal
// stays closed so a lookup leaves nothing behind on disk.
func (a *cliApp) prepareLookup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	return a.bootstrap(ctx, cmd, false)
}

func (a *cliApp) bootstrap(ctx context.Context, cmd *cli.Command, journal bool) (context.Context, error) {
	if err := a.loadConfig(cmd); err != nil {
		return ctx, err
	}
	if !journal {
		a.cfg.Journal.Enabled = false
	}
	rt, err := internal.Bootstrap(a.cfg, a.logger)
	if err != nil {
		return ctx, err
	}
	a.rt = rt
	return ctx, nil
}

func (a *cliApp) release(_ context.Context, _ *cli.Command) error {
	if a.rt == nil {
		return nil
	}
	err := a.rt.Close()
	a.rt = nil
	return err
}

func (a *cliApp) add(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 || cmd.Args().Len() > 2 {
		return fmt.Errorf("usage: lexicon add <name> [description] [--parent <name>]")
	}
	res, err := a.rt.Service.AddTerm(ctx, cmd.Args().Get(0), cmd.Args().Get(1), cmd.String("parent"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, res.Path)
	return err
}

func (a *cliApp) search(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: lexicon search <name> [--script]")
	}
	info, err := a.rt.Service.SearchTerm(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	if cmd.Bool("script") {
		_, err = fmt.Fprintln(a.stdout, info.Path)
		return err
	}

	var b strings.Builder
	b.WriteString(info.Name)
	b.WriteByte('\n')
	b.WriteString(info.Description)
	if info.Description != "" && !strings.HasSuffix(info.Description, "\n") {
		b.WriteByte('\n')
	}
	for _, child := range info.Children {
		b.WriteString("  - ")
		b.WriteString(child)
		b.WriteByte('\n')
	}
	_, err = io.WriteString(a.stdout, b.String())
	return err
}

func (a *cliApp) tree(ctx context.Context, _ *cli.Command) error {
	nodes, err := a.rt.Service.Tree(ctx)
	if err != nil {
		return err
	}
	return termservice.WriteTree(a.stdout, nodes)
}

func (a *cliApp) history(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		return fmt.Errorf("usage: lexicon history [name] [--limit N]")
	}
	var (
		items []models.Addition
		err   error
	)
	if name := cmd.Args().First(); name != "" {
		items, err = a.rt.Service.TermHistory(ctx, name)
	} else {
		items, err = a.rt.Service.History(ctx, int(cmd.Int("limit")))
	}
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	for _, it := range items {
		promoted := ""
		if it.Promoted {
			promoted = "promoted " + it.Parent
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.CreatedAt.Local().Format(time.DateTime), checksum.Short(it.Checksum), it.Name, it.Path, promoted)
	}
	return tw.Flush()
}

func (a *cliApp) serve(ctx context.Context, cmd *cli.Command) error {
	if err := a.loadConfig(cmd); err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(a.cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func (a *cliApp) mcp(ctx context.Context, cmd *cli.Command) error {
	if err := a.loadConfig(cmd); err != nil {
		return err
	}
	return internal.ServeMCP(ctx,
		internal.WithConfig(a.cfg),
		internal.WithLogger(internal.NewLogger(a.stderr, a.cfg.App.LogLevel, true)),
		internal.WithVersion(version))
}

func newCommand(a *cliApp) *cli.Command {
	return &cli.Command{
		Name:      "lexicon",
		Usage:     "Hierarchical vocabulary stored as plain text files",
		Version:   version,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("LEXICON_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Vocabulary root directory (overrides config)",
				Sources: cli.EnvVars("LEXICON_ROOT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a term, promoting the parent when it is still a leaf",
				ArgsUsage: "<name> [description]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "parent", Aliases: []string{"p"}, Usage: "Existing term to nest under"},
				},
				Before: a.prepare,
				After:  a.release,
				Action: a.add,
			},
			{
				Name:      "search",
				Usage:     "Look up a term by exact name",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "script", Usage: "Print only the term's path"},
				},
				Before: a.prepareLookup,
				After:  a.release,
				Action: a.search,
			},
			{
				Name:   "tree",
				Usage:  "Print every term as an indented tree",
				Before: a.prepareLookup,
				After:  a.release,
				Action: a.tree,
			},
			{
				Name:      "history",
				Usage:     "Show recent additions from the journal, or every addition of one term",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum entries"},
				},
				Before: a.prepare,
				After:  a.release,
				Action: a.history,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live change events",
				Action: a.serve,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: a.mcp,
			},
		},
	}
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &cliApp{stdout: stdout, stderr: stderr}
	err := newCommand(a).Run(ctx, args)
	if err == nil {
		return apperr.ExitOK
	}

	logger := a.logger
	if logger == nil {
		logger = internal.NewLogger(stderr, slog.LevelWarn, false)
	}
	logger.Error("command failed",
		slog.String("kind", apperr.Kind(err)),
		slog.String("error", err.Error()))
	return apperr.ExitCode(err)
}

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}
