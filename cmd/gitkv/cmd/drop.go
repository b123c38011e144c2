package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropCmd = &cobra.Command{
	Use:   "drop <table>",
	Short: "Delete a table's backing file from the repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrop,
}

func init() {
	rootCmd.AddCommand(dropCmd)
}

func runDrop(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	_, table, err := connectTable(ctx, args[0])
	if err != nil {
		return err
	}

	if err := table.Drop(ctx); err != nil {
		return fmt.Errorf("drop failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Dropped %s\n", args[0])
	return nil
}
