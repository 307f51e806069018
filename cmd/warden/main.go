// Command warden runs agent tool calls behind a permission gate with
// pre-mutation snapshots, and manages the snapshot history.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"warden/internal/approval"
	"warden/internal/config"
	"warden/internal/diff"
	"warden/internal/executor"
	"warden/internal/logging"
	"warden/internal/permission"
	"warden/internal/snapshot"
	"warden/internal/snapshot/filestore"
	"warden/internal/tool"
	"warden/internal/tools/builtin"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// app bundles the wired core for the CLI commands.
type app struct {
	cfg       config.Config
	catalog   *tool.Catalog
	perms     *permission.Controller
	snapshots *snapshot.Manager
	comparer  *diff.Comparer
	executor  *executor.Executor
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newApp() (*app, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if workDir := viper.GetString("workdir"); workDir != "" {
		cfg.WorkDir = workDir
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir, _ = os.Getwd()
	}
	if viper.GetBool("no-color") {
		cfg.Color = false
		color.NoColor = true
	}

	logger := logging.NewComponentLogger("CLI")
	manager := snapshot.NewManager(filestore.New(cfg.SnapshotDir), logger)

	catalog := tool.NewCatalog()
	if err := builtin.RegisterAll(catalog, builtin.Config{
		WorkDir:        cfg.WorkDir,
		BashTimeout:    cfg.BashTimeout(),
		MaxOutputBytes: cfg.MaxOutputBytes,
	}); err != nil {
		return nil, err
	}

	perms := permission.NewController()
	if mode := permission.Mode(viper.GetString("mode")); mode != "" {
		if !mode.Valid() {
			return nil, fmt.Errorf("invalid mode %q (normal, auto-accept, plan)", mode)
		}
		perms.SetMode(mode)
	}

	var approver approval.Approver
	if viper.GetBool("yes") || !isTTY() {
		approver = approval.NewNoOpApprover()
	} else {
		approver = approval.NewInteractiveApprover(cfg.ApprovalTimeout(), cfg.Color)
	}

	comparer := diff.NewComparer(manager, diff.NewGenerator(3, cfg.Color))

	exec := executor.New(catalog, perms, manager, executor.Options{
		WorkDir:  cfg.WorkDir,
		Approver: approver,
		Logger:   logger,
	})

	return &app{
		cfg:       cfg,
		catalog:   catalog,
		perms:     perms,
		snapshots: manager,
		comparer:  comparer,
		executor:  exec,
	}, nil
}

func main() {
	root := &cobra.Command{
		Use:           "warden",
		Short:         "Recoverable, permission-gated tool execution for coding agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ~/.warden/config.yaml)")
	flags.String("mode", "", "permission mode: normal, auto-accept, plan")
	flags.String("session", "", "session id for snapshots")
	flags.String("workdir", "", "working directory for tool paths")
	flags.Bool("yes", false, "auto-approve dangerous tools")
	flags.Bool("no-color", false, "disable colored output")
	for _, name := range []string{"config", "mode", "session", "workdir", "yes", "no-color"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	viper.SetEnvPrefix("WARDEN")
	viper.AutomaticEnv()

	root.AddCommand(newToolsCmd(), newExecCmd(), newSnapshotsCmd(), newModeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			for _, def := range a.catalog.All() {
				flags := ""
				if def.Dangerous {
					flags += yellow(" [dangerous]")
				}
				if def.NeedsSnapshot {
					flags += gray(" [snapshot]")
				}
				fmt.Printf("%-12s %s%s\n", def.Name, def.Description, flags)
			}
			return nil
		},
	}
}
