package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initConfigForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml populated with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"

		if !initConfigForce {
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		// cfg is already loaded with defaults applied by the root command.
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "init: marshal config")
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return eris.Wrap(err, "init: write config")
		}

		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "overwrite an existing config.yaml")
	rootCmd.AddCommand(initConfigCmd)
}
