package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml with the default settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		const path = "config.yaml"

		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		starter := config.Config{
			Store: config.StoreConfig{
				Driver: "sqlite",
				Path:   "leadgen.db",
			},
			Google: config.GoogleConfig{
				Language: "de",
			},
			Discovery: config.DiscoveryConfig{
				DefaultLocation:    "Wien, Austria",
				QueryDelayMS:       2000,
				WebsiteTimeoutSecs: 10,
				RateLimit:          10,
				DetailWorkers:      4,
				TargetLocations: []string{
					"wien", "vienna", "korneuburg", "klosterneuburg",
					"stockerau", "graz", "linz", "salzburg",
				},
				HighValueTypes: []string{
					"restaurant", "hotel", "arzt", "rechtsanwalt",
					"handwerk", "immobilien", "gastro",
				},
			},
			Server: config.ServerConfig{
				Port:           8080,
				AllowedOrigins: []string{"*"},
			},
			Log: config.LogConfig{
				Level:  "info",
				Format: "json",
			},
		}

		data, err := yaml.Marshal(&starter)
		if err != nil {
			return eris.Wrap(err, "init: marshal config")
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "init: write %s", path)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (set google.key or LEADGEN_GOOGLE_KEY before running discover)\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.yaml")
	rootCmd.AddCommand(initCmd)
}
