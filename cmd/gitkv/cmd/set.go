package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <table> <key> <value>",
	Short: "Write one value to a table",
	Long:  "Set a key in a table and commit. The value is parsed as JSON; invalid JSON is stored as a plain string.",
	Args:  cobra.ExactArgs(3),
	RunE:  runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	db, table, err := connectTable(ctx, args[0])
	if err != nil {
		return err
	}

	var value any
	if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
		value = args[2]
	}

	pending, err := table.Set(args[1], value)
	if err != nil {
		return err
	}
	if _, err := commitAndWait(ctx, db, pending); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Committed %s[%q]\n", args[0], args[1])
	return nil
}
