package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys <table>",
	Short: "List keys in a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeys,
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	_, table, err := connectTable(ctx, args[0])
	if err != nil {
		return err
	}

	keys, err := table.Keys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("(no keys)")
		return nil
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}
