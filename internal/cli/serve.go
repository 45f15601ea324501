package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/integrations/jira"
	"github.com/matzehuels/orgtower/pkg/rows"
	"github.com/matzehuels/orgtower/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string
	static      string
	fromJira    bool
	jql         string
	reloadEvery time.Duration
	noCache     bool
}

// serveCommand creates the serve command, which exposes scenes over HTTP
// and WebSocket.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [rows-file]",
		Short: "Serve layouts and live scenes over HTTP",
		Long: `Serve layouts and live scenes over HTTP.

Rows come from a file or, with --jira, from Jira. With --reload the Jira data
is fetched again on that interval and every open session is rebuilt.

Endpoints:
  GET /api/graph            node-link graph
  GET /api/tree             tree reduction
  GET /api/layout           static layout (mode, width, height, active)
  GET /api/nodes/{id}       hover detail
  GET /ws                   live scene session
  GET /healthz              liveness

Examples:
  orgtower serve groups.csv --addr :8080
  orgtower serve --jira --reload 15m --static web/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if (input == "") == !opts.fromJira {
				return errors.New("pass a rows file or --jira")
			}
			return c.runServe(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().StringVar(&opts.static, "static", "", "directory served at /")
	cmd.Flags().BoolVar(&opts.fromJira, "jira", false, "load rows from Jira")
	cmd.Flags().StringVar(&opts.jql, "jql", "", "Jira search query")
	cmd.Flags().DurationVar(&opts.reloadEvery, "reload", 0, "refetch Jira rows on this interval (0 disables)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts *serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	load := func(ctx context.Context, refresh bool) ([]rows.Row, error) {
		if input != "" {
			return rows.ReadFile(input)
		}
		groups, err := c.fetchGroups(ctx, cfg, jira.FetchOptions{JQL: opts.jql, Refresh: refresh}, opts.noCache)
		if err != nil {
			return nil, err
		}
		return rows.Expand(groups), nil
	}

	rs, err := load(ctx, false)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	static := opts.static
	if static == "" {
		static = cfg.Server.Static
	}
	srv := server.New(server.Options{
		Rows:         rs,
		Scene:        sceneConfig(cfg),
		Runner:       runner,
		Measurer:     c.measurer(),
		Static:       static,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Logger:       c.Logger,
	})

	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	printSuccess("Serving %d rows", len(rs))
	printKeyValue("Address", StyleLink.Render("http://"+displayAddr(addr)))
	if static != "" {
		printKeyValue("Static", static)
	}
	printNewline()

	if opts.fromJira && opts.reloadEvery > 0 {
		go c.reloadLoop(ctx, srv, opts.reloadEvery, load)
	}

	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// reloadLoop replaces the server rows on every tick until ctx is done.
// Failed fetches keep the previous rows.
func (c *CLI) reloadLoop(ctx context.Context, srv *server.Server, every time.Duration, load func(context.Context, bool) ([]rows.Row, error)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prog := newProgress(loggerFromContext(ctx))
			rs, err := load(ctx, true)
			if err != nil {
				loggerFromContext(ctx).Warn("reload failed", "error", err)
				continue
			}
			srv.SetRows(rs)
			prog.done("reloaded rows", "rows", len(rs))
		}
	}
}

// displayAddr fills in a host for wildcard listen addresses.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
