package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <table> <key>",
	Short: "Read one value from a table",
	Long:  "Fetch a table from the repository and print the value for a key as JSON.",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	_, table, err := connectTable(ctx, args[0])
	if err != nil {
		return err
	}

	ok, err := table.Has(args[1])
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "key %q not found\n", args[1])
		os.Exit(1)
	}

	value, err := table.Get(args[1])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
