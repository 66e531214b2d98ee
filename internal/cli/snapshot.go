package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olehkavur/fira/internal/flow"
	"github.com/olehkavur/fira/internal/project"
)

// newSnapshotCmd creates the snapshot command, the cron entry point for
// daily CFD capture.
func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [project]",
		Short: "Record CFD snapshots",
		Long: `Take and store a cumulative-flow snapshot for one project, or for
every project when none is named. Re-running on the same day replaces
that day's entry, so a cron job can fire as often as it likes.

Example:
  fira snapshot              # Snapshot every project
  fira snapshot proj-1       # Snapshot one project`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			svc := flow.NewService(cfg.BaseDir, cfg.WIPConfigPath, cfg.CFDDataPath,
				flow.WithLogger(logger))

			var ids []string
			if len(args) == 1 {
				ids = args
			} else {
				mgr := project.NewManager(cfg.BaseDir, project.WithLogger(logger))
				infos, err := mgr.List()
				if err != nil {
					return err
				}
				for _, info := range infos {
					ids = append(ids, info.ID)
				}
			}

			for _, id := range ids {
				snap, err := svc.TakeCFDSnapshot(id)
				if err != nil {
					return err
				}
				if err := svc.StoreCFDSnapshot(id, snap); err != nil {
					return err
				}
				fmt.Printf("%s: backlog=%d progress=%d review=%d testing=%d done=%d\n",
					id, snap.Backlog, snap.Progress, snap.Review, snap.Testing, snap.Done)
			}
			return nil
		},
	}
}
