package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// overridesCmd groups the prompt override management commands
var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Manage system prompt overrides",
	Long: `Inspect and manage the versioned system prompt override store.

Examples:
  deep-agent overrides list                      # Full override history, newest first
  deep-agent overrides show research_agent       # Active override for one agent
  deep-agent overrides remove research_agent     # Revert an agent to its default prompt`,
}

var overridesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all system prompt overrides, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, cleanup, err := buildComponents()
		if err != nil {
			return err
		}
		defer cleanup()

		overrides, err := comps.overrides.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"count":     len(overrides),
			"overrides": overrides,
		})
	},
}

var overridesShowCmd = &cobra.Command{
	Use:   "show [agent-name]",
	Short: "Show the active override for an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, cleanup, err := buildComponents()
		if err != nil {
			return err
		}
		defer cleanup()

		override, err := comps.overrides.Active(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if override == nil {
			fmt.Printf("No active override for %s\n", args[0])
			return nil
		}
		return printJSON(override)
	},
}

var overridesRemoveCmd = &cobra.Command{
	Use:   "remove [agent-name]",
	Short: "Remove an agent's active override, reverting to the default prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, cleanup, err := buildComponents()
		if err != nil {
			return err
		}
		defer cleanup()

		removed, err := comps.overrides.Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Printf("No active override to remove for %s\n", args[0])
			return nil
		}
		fmt.Printf("Override removed, %s reverted to default prompt\n", args[0])
		return nil
	},
}

func init() {
	overridesCmd.AddCommand(overridesListCmd)
	overridesCmd.AddCommand(overridesShowCmd)
	overridesCmd.AddCommand(overridesRemoveCmd)
}

// printJSON writes indented JSON to stdout
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
