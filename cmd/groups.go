package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/slackadder/internal/config"
	"github.com/nextlevelbuilder/slackadder/internal/groups"
)

func groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Print the configured channel groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}
			defs, err := groups.Load(cfg.GroupsFile)
			if err != nil {
				return err
			}
			if defs.Len() == 0 {
				fmt.Printf("No channel groups defined in %s.\n", cfg.GroupsFile)
				return nil
			}
			for _, name := range defs.Names() {
				g, _ := defs.Lookup(name)
				fmt.Printf("%s (%d channels)\n", g.DisplayName, len(g.Channels))
				if g.Description != "" {
					fmt.Printf("  %s\n", g.Description)
				}
				fmt.Printf("  %s\n", strings.Join(g.Channels, ", "))
			}
			return nil
		},
	}
}
