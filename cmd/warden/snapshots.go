package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"warden/internal/snapshot"
	"warden/internal/tool"
)

// classify maps store-level errors onto the structured kinds callers match
// on, so a bad id renders differently from an IO failure.
func classify(id string, err error) error {
	if errors.Is(err, snapshot.ErrNotFound) {
		return tool.NewSnapshotNotFound(id, err)
	}
	return err
}

func newSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "Inspect, diff, and restore snapshots",
	}
	cmd.AddCommand(
		newSnapshotsListCmd(),
		newSnapshotsShowCmd(),
		newSnapshotsDiffCmd(),
		newSnapshotsRevertCmd(),
		newSnapshotsDeleteCmd(),
		newSnapshotsCleanCmd(),
	)
	return cmd
}

func newSnapshotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			entries, err := a.snapshots.List(viper.GetString("session"))
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No snapshots.")
				return nil
			}
			for _, entry := range entries {
				session := entry.SessionID
				if session == "" {
					session = "-"
				}
				fmt.Printf("%s  %s  %2d files  %-12s  %s\n",
					entry.ID,
					entry.CreatedAt.Format("2006-01-02 15:04:05"),
					entry.FileCount,
					session,
					entry.Reason)
			}
			return nil
		},
	}
}

func newSnapshotsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the files captured in a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			snap, err := a.snapshots.Load(args[0])
			if err != nil {
				return classify(args[0], err)
			}
			fmt.Printf("%s  %s\n", snap.ID, snap.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("Reason: %s\n", snap.Reason)
			if snap.Meta.ToolUsed != "" {
				fmt.Printf("Tool: %s\n", snap.Meta.ToolUsed)
			}
			for _, file := range snap.Files {
				fmt.Printf("  %s (%d bytes, %s)\n", file.Path, file.Size, gray(file.Hash[:12]))
			}
			return nil
		},
	}
}

func newSnapshotsDiffCmd() *cobra.Command {
	var summaryOnly bool
	cmd := &cobra.Command{
		Use:   "diff <id> [previous-id]",
		Short: "Diff a snapshot against a previous one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			previous := ""
			if len(args) == 2 {
				previous = args[1]
			}
			result, err := a.comparer.Compare(args[0], previous)
			if err != nil {
				return classify(args[0], err)
			}
			if summaryOnly {
				fmt.Print(a.comparer.FormatSummary(result))
				return nil
			}
			fmt.Print(a.comparer.FormatFull(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "print counts and file names only")
	return cmd
}

func newSnapshotsRevertCmd() *cobra.Command {
	var files string
	var noBackup bool
	cmd := &cobra.Command{
		Use:   "revert <id>",
		Short: "Restore files to their snapshotted content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			req := snapshot.RevertRequest{
				SnapshotID:   args[0],
				CreateBackup: !noBackup,
			}
			if files != "" {
				req.Files = strings.Split(files, ",")
			}
			result, err := a.snapshots.Revert(cmd.Context(), req)
			if err != nil {
				return classify(args[0], err)
			}
			if result.BackupSnapshotID != "" {
				fmt.Println(gray("backup: " + result.BackupSnapshotID))
			}
			for _, path := range result.FilesReverted {
				fmt.Println(green("reverted ") + path)
			}
			for _, failure := range result.Errors {
				fmt.Println(red("failed   ") + failure.File + ": " + failure.Error)
			}
			if !result.Success {
				return tool.NewPartialRevert(args[0], len(result.FilesReverted), len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&files, "files", "", "comma-separated subset of captured paths")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the safety snapshot")
	return cmd
}

func newSnapshotsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			deleted, err := a.snapshots.Delete(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return tool.NewSnapshotNotFound(args[0], nil)
			}
			fmt.Println("Deleted " + args[0])
			return nil
		},
	}
}

func newSnapshotsCleanCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete old snapshots beyond a per-session budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if keep == 0 {
				keep = a.cfg.KeepPerSession
			}
			deleted, err := a.snapshots.CleanOld(keep)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d snapshot(s), keeping %d per session.\n", deleted, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "snapshots to keep per session (default from config)")
	return cmd
}
