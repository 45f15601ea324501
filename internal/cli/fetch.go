package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/config"
	"github.com/matzehuels/orgtower/pkg/integrations/jira"
	"github.com/matzehuels/orgtower/pkg/rows"
)

// fetchOpts holds the command-line flags for the fetch command.
type fetchOpts struct {
	output  string
	jql     string
	keys    []string
	refresh bool
	noCache bool
}

// fetchCommand creates the fetch command, which downloads governance
// groups from Jira.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch governance groups from Jira",
		Long: `Fetch governance groups from Jira.

Every issue matching the query is one group; the issues it links to are its
parents. Credentials come from JIRA_USER_EMAIL and JIRA_API_TOKEN (a .env
file in the working directory is read).

The output format follows the file extension:

  .json   groups with their linked issues (default, stdout if no file)
  .csv    the grouped CSV export, one row per parent
  .yaml   rows as a YAML list

Examples:
  orgtower fetch -o groups.json
  orgtower fetch --keys RVG-1,RVG-7 -o groups.csv
  orgtower fetch --jql 'project = RVG AND status = Active' -o active.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.jql, "jql", "", "search query (default: live groups of the RVG project)")
	cmd.Flags().StringSliceVar(&opts.keys, "keys", nil, "explicit issue keys (comma-separated)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, opts *fetchOpts) error {
	format := rows.FormatJSON
	if opts.output != "" {
		var err error
		if format, err = rows.DetectFormat(opts.output); err != nil {
			return err
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	spinner := startSpinner(ctx, "Fetching groups from "+cfg.Jira.ServerURL+"...")

	groups, err := c.fetchGroups(ctx, cfg, jira.FetchOptions{
		JQL:     opts.jql,
		Keys:    opts.keys,
		Refresh: opts.refresh,
	}, opts.noCache)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writeGroups(out, groups, format); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	if opts.output != "" {
		printSuccess("Fetched %d groups", len(groups))
		printFile(opts.output)
		printNewline()
		printNextStep("Build", appName+" parse "+opts.output)
	}
	return nil
}

// fetchGroups runs one Jira fetch with the configured cache.
func (c *CLI) fetchGroups(ctx context.Context, cfg config.Config, fo jira.FetchOptions, noCache bool) ([]rows.Group, error) {
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	client, err := jira.NewClient(ch, cfg.Jira, c.Logger)
	if err != nil {
		return nil, err
	}
	return client.Fetch(ctx, fo)
}

// writeGroups encodes groups in a row file format. JSON keeps the linked
// issues; CSV and YAML are flattened to rows.
func writeGroups(w io.Writer, groups []rows.Group, format string) error {
	switch strings.ToLower(format) {
	case rows.FormatJSON:
		if groups == nil {
			groups = []rows.Group{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	case rows.FormatCSV:
		return rows.WriteCSV(w, rows.Expand(groups))
	case rows.FormatYAML:
		return rows.WriteYAML(w, rows.Expand(groups))
	default:
		return fmt.Errorf("%w: %q", rows.ErrUnknownFormat, format)
	}
}
