package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/scene"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for orgtower.

Bash:
  $ source <(orgtower completion bash)

Zsh:
  $ orgtower completion zsh > "${fpath[1]}/_orgtower"

Fish:
  $ orgtower completion fish > ~/.config/fish/completions/orgtower.fish

PowerShell:
  PS> orgtower completion powershell | Out-String | Invoke-Expression

Completions cover the layout modes, the output formats and row files.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// inputExts are the file extensions accepted as rows or graph input.
var inputExts = []string{"csv", "json", "yaml", "yml"}

// registerCompletions attaches value completions to the flags and
// positional arguments of every subcommand of root.
func registerCompletions(root *cobra.Command) {
	modes := cobra.FixedCompletions([]string{string(scene.ModeTree), string(scene.ModeGraph)}, cobra.ShellCompDirectiveNoFileComp)
	formats := formatCompletion(pipeline.ValidFormats)

	for _, cmd := range root.Commands() {
		if cmd.Flags().Lookup("mode") != nil {
			_ = cmd.RegisterFlagCompletionFunc("mode", modes)
		}
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", formats)
		}
		switch cmd.Name() {
		case "parse", "tree", "layout", "render", "serve", "explore":
			cmd.ValidArgsFunction = fileCompletion(inputExts...)
		case "visualize":
			cmd.ValidArgsFunction = fileCompletion("json")
		}
	}
}

func fileCompletion(exts ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// formatCompletion completes the last entry of a comma-separated format
// list, keeping the entries before it.
func formatCompletion(valid []string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		head := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			head = toComplete[:i+1]
		}
		out := make([]string, 0, len(valid))
		for _, f := range valid {
			out = append(out, head+f)
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
