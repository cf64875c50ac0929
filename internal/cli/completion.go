package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand prints a shell completion script for riskgraph.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for riskgraph to stdout.

Besides subcommands and flags, the scripts complete directories for
"riskgraph scan", graph formats for --graph and JSON files for --output.

Bash:
  $ source <(riskgraph completion bash)
  $ riskgraph completion bash > /etc/bash_completion.d/riskgraph

Zsh (requires compinit):
  $ riskgraph completion zsh > "${fpath[1]}/_riskgraph"

Fish:
  $ riskgraph completion fish > ~/.config/fish/completions/riskgraph.fish

PowerShell:
  PS> riskgraph completion powershell | Out-String | Invoke-Expression

Start a new shell after installing a script.`,
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

	return cmd
}

// registerScanCompletions completes the scan directory argument and the
// file flags.
func registerScanCompletions(cmd *cobra.Command) {
	cmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveFilterDirs
	}
	exts := make([]string, len(graphFormats))
	for i, f := range graphFormats {
		exts[i] = strings.TrimPrefix(f, ".")
	}
	_ = cmd.MarkFlagFilename("graph", exts...)
	_ = cmd.MarkFlagFilename("output", "json")
}
