package main

import (
	"github.com/spf13/cobra"

	"github.com/youruser/therapydeck/internal/config"
)

func newInitConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "therapydeck.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			okColor.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			keyColor.Fprintln(cmd.ErrOrStderr(), "set GEMINI_API_KEY to enable generation")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
