package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/integrations/jira"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/rows"
	"github.com/matzehuels/orgtower/pkg/scene"
)

// exploreCommand creates the explore command, an interactive terminal view
// of a live scene.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		mode       string
		activeOnly bool
		fromJira   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "explore [rows-file]",
		Short: "Explore a governance hierarchy in the terminal",
		Long: `Explore a governance hierarchy in the terminal.

The graph mode runs the force simulation live; the tree mode shows the
first-parent hierarchy. Keys:

  g / t        graph or tree mode
  + / -        zoom in or out
  0            reset the view
  arrows       pan
  a            toggle the active-only filter
  tab          next node, with details
  q            quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if (input == "") == !fromJira {
				return errors.New("pass a rows file or --jira")
			}
			return c.runExplore(cmd.Context(), input, mode, activeOnly, fromJira, noCache)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "initial mode: graph, tree (default: config)")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "start with inactive groups hidden")
	cmd.Flags().BoolVar(&fromJira, "jira", false, "load rows from Jira")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input, mode string, activeOnly, fromJira, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var rs []rows.Row
	if fromJira {
		groups, err := c.fetchGroups(ctx, cfg, jira.FetchOptions{}, noCache)
		if err != nil {
			return err
		}
		rs = rows.Expand(groups)
	} else if rs, err = rows.ReadFile(input); err != nil {
		return err
	}

	sc := sceneConfig(cfg)
	if mode != "" {
		m, err := scene.ParseMode(mode)
		if err != nil {
			return err
		}
		sc.Mode = m
	}
	sc.ActiveOnly = sc.ActiveOnly || activeOnly

	// The terminal belongs to the explorer; log messages would tear it.
	s := scene.New(sc, scene.WithContext(ctx), scene.WithMeasurer(text.Cells{CellWidth: cellW}))
	defer s.Close()

	frames := make(chan graph.Layout, 1)
	unsubscribe := s.Subscribe(func(l graph.Layout) { offerFrame(frames, l) })
	defer unsubscribe()
	s.SetRows(rs)

	p := tea.NewProgram(NewExploreModel(s, frames), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("explore: %w", err)
	}

	printReport(s.Report())
	return nil
}

// offerFrame replaces any pending frame with l without blocking. The
// explorer only ever draws the latest snapshot.
func offerFrame(frames chan graph.Layout, l graph.Layout) {
	for {
		select {
		case frames <- l:
			return
		default:
		}
		select {
		case <-frames:
		default:
		}
	}
}
