package cmd

import (
	"fmt"
	"sort"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/config"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/output"
	"github.com/spf13/cobra"
)

// configKeys are the settings cg reads
var configKeys = []string{
	"api.base_url",
	"api.timeout",
	"api.requests_per_second",
	"api.burst",
	"output.format",
	"feed.sort",
	"feed.limit",
	"cache.ttl_seconds",
	"moderation.poll_seconds",
	"log.level",
	"log.file",
	"log.max_size_mb",
	"log.max_backups",
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show or change CLI settings",
	Annotations: map[string]string{noSession: "true"},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration and where it lives",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noSession: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		record := map[string]interface{}{
			"config_file": config.GetConfigFile(),
			"config_dir":  config.GetConfigDir(),
			"credentials": config.GetCredentialsPath(),
		}
		for _, key := range configKeys {
			record[key] = config.GetString(key)
		}
		return output.PrintRecord("", record)
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Save a setting to the user config file",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{noSession: "true"},
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		keys := append([]string(nil), configKeys...)
		sort.Strings(keys)
		return keys, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !known(key) {
			return cliErrors.ValidationError(fmt.Sprintf("unknown setting %q", key)).
				WithSuggestion("Run 'cg config show' to list settings.")
		}
		if key == "output.format" && !output.ValidateOutputFormat(value) {
			return &api.ValidationError{Field: "value", Message: "output.format must be text, json, table or yaml"}
		}
		if err := config.SetString(key, value); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		output.PrintSuccess("✓ %s = %s (saved to %s)", key, value, config.GetConfigFile())
		return nil
	},
}

func known(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
