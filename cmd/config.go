package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xvierd/fuzzle/internal/config"
)

// configCmd represents the config command. It only needs the config file,
// so it skips storage setup.
var configCmd = &cobra.Command{
	Use:       "config [path|show]",
	Short:     "Show the configuration",
	Long:      `Print the config file location ("path") or the effective settings ("show", the default).`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"path", "show"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app.config = cfg
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 1 && args[0] == "path" {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, path)
			return nil
		}

		if jsonOutput {
			return writeJSON(out, configJSON(app.config))
		}
		writeConfig(out, app.config)
		return nil
	},
}

func configJSON(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"user_id": cfg.UserID,
		"timer": map[string]interface{}{
			"default_minutes": cfg.Timer.DefaultMinutes,
			"tick_interval":   cfg.Timer.TickInterval.String(),
		},
		"logs": map[string]interface{}{
			"page_size": cfg.Logs.PageSize,
		},
		"notifications": map[string]interface{}{
			"enabled": cfg.Notifications.Enabled,
			"sound":   cfg.Notifications.Sound,
		},
		"mcp": map[string]interface{}{
			"enabled": cfg.MCP.Enabled,
		},
		"storage": map[string]interface{}{
			"backend":  cfg.Storage.Backend,
			"data_dir": cfg.Storage.DataDir,
			"postgres": cfg.Storage.PostgresDSN != "",
		},
		"log": map[string]interface{}{
			"level": cfg.Log.Level,
			"file":  cfg.Log.File,
		},
	}
}

func writeConfig(w io.Writer, cfg *config.Config) {
	user := cfg.UserID
	if user == "" {
		user = "(none, sessions are not saved)"
	}
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Current configuration:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    User:              %s\n", user)
	fmt.Fprintf(w, "    Default duration:  %d min\n", cfg.Timer.DefaultMinutes)
	fmt.Fprintf(w, "    Tick interval:     %s\n", cfg.Timer.TickInterval)
	fmt.Fprintf(w, "    Logs page size:    %d\n", cfg.Logs.PageSize)
	fmt.Fprintf(w, "    Notifications:     %s (sound %s)\n", onOff(cfg.Notifications.Enabled), onOff(cfg.Notifications.Sound))
	fmt.Fprintf(w, "    MCP server:        %s\n", onOff(cfg.MCP.Enabled))
	fmt.Fprintf(w, "    Storage:           %s\n", cfg.Storage.Backend)
	fmt.Fprintf(w, "    Data directory:    %s\n", cfg.Storage.DataDir)
	fmt.Fprintf(w, "    Log:               %s (%s)\n", cfg.Log.File, cfg.Log.Level)
	fmt.Fprintln(w)
}
