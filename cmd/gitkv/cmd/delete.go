package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <table> <key>",
	Short: "Delete one key from a table",
	Long:  "Remove a key from a table and commit. Reports whether the key existed.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	db, table, err := connectTable(ctx, args[0])
	if err != nil {
		return err
	}

	pending, err := table.Delete(args[1])
	if err != nil {
		return err
	}
	existed, err := commitAndWait(ctx, db, pending)
	if err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(os.Stderr, "Deleted %s[%q]\n", args[0], args[1])
	} else {
		fmt.Fprintf(os.Stderr, "Key %q was not present\n", args[1])
	}
	return nil
}
