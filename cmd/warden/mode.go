package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warden/internal/permission"
)

// Mode state lives for one process and is never persisted; these commands
// exist so wrapping agents can inspect and exercise the state machine.
func newModeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Inspect the permission mode state machine",
	}
	cmd.AddCommand(newModeGetCmd(), newModeSetCmd(), newModeCycleCmd())
	return cmd
}

func newModeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the effective permission mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			fmt.Println(a.perms.Mode())
			return nil
		},
	}
}

func newModeSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <mode>",
		Short: "Validate a mode and show what each mode permits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := permission.Mode(args[0])
			if !mode.Valid() {
				return fmt.Errorf("invalid mode %q (normal, auto-accept, plan)", args[0])
			}
			fmt.Println(mode)
			switch mode {
			case permission.ModeNormal:
				fmt.Println(gray("all tools run; dangerous tools ask for confirmation"))
			case permission.ModeAutoAccept:
				fmt.Println(gray("all tools run without confirmation"))
			case permission.ModePlan:
				fmt.Println(gray("read-only tools only; mutations are blocked"))
			}
			return nil
		},
	}
}

func newModeCycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Print the mode that follows the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			fmt.Println(a.perms.CycleMode())
			return nil
		},
	}
}
