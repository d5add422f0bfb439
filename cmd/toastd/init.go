package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toastd/internal/config"
	"github.com/vango-dev/toastd/internal/errors"
)

func initCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default toastd.json",
		Long: `Write toastd.json with default values into --dir.

Examples:
  toastd init
  toastd init --dir ./site --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runInit(flags.dir, force)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing toastd.json")

	return cmd
}

// runInit writes the default configuration and returns its path.
func runInit(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.ConfigFileName)
	if config.Exists(dir) && !force {
		return "", errors.New("T200").WithSuggestion("Pass --force to overwrite " + path + ".")
	}
	if err := config.New().SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}
