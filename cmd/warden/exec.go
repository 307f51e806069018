package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"warden/internal/tool"
)

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <tool> [key=value...]",
		Short: "Execute a single tool call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			arguments, err := parseArgs(args[1:])
			if err != nil {
				return err
			}

			result := a.executor.Execute(cmd.Context(), tool.CallRequest{
				ID:        fmt.Sprintf("cli-%d", time.Now().UnixNano()),
				Name:      args[0],
				Arguments: arguments,
				SessionID: viper.GetString("session"),
			})

			if !result.Success {
				return fmt.Errorf("%s", result.Error)
			}
			if result.SnapshotID != "" {
				fmt.Println(gray("snapshot: " + result.SnapshotID))
			}
			fmt.Println(result.Content)
			return nil
		},
	}
}

// parseArgs turns key=value pairs into tool arguments, coercing booleans
// and numbers so flags like recursive=true round-trip as their JSON types.
func parseArgs(pairs []string) (map[string]any, error) {
	arguments := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		arguments[key] = coerce(value)
	}
	return arguments, nil
}

func coerce(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if number, err := strconv.ParseFloat(value, 64); err == nil {
		return number
	}
	return value
}
