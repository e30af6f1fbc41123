package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mateai/mate/internal/release"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("mate", version)

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		res, err := release.NewChecker(cfg.Release.Owner, cfg.Release.Repo).Check(ctx, version)
		switch {
		case errors.Is(err, release.ErrDevBuild):
			fmt.Println("Development build; no release to compare against.")
			return nil
		case err != nil:
			return fmt.Errorf("check for updates: %w", err)
		case res.UpdateAvailable:
			fmt.Printf("New version %s available (published %s): %s\n",
				res.Latest, res.PublishedAt.Local().Format("2006-01-02"), res.URL)
		default:
			fmt.Println("Already running the latest version.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
}
