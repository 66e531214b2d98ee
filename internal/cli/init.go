package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olehkavur/fira/internal/project"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <project-id>",
		Short: "Create a project skeleton",
		Long: `Create a project directory with the standard status folders
(backlog, progress, review, testing, done), each holding a default-dev
subfolder, plus a README with the project description.

Example:
  fira init payments --description "Payments board"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			description, _ := cmd.Flags().GetString("description")

			mgr := project.NewManager(cfg.BaseDir, project.WithLogger(newLogger(cfg)))
			if err := mgr.Create(args[0], description); err != nil {
				return err
			}
			fmt.Printf("Created project %s in %s\n", args[0], mgr.Path(args[0]))
			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "project description for the README")

	return cmd
}
