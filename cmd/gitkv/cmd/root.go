package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/gitkv"
)

var rootCmd = &cobra.Command{
	Use:   "gitkv",
	Short: "Repository-backed key-value store CLI",
	Long:  "CLI for reading and writing JSON tables stored in a GitHub or Gitea repository.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/gitkv/config.yaml)")
	rootCmd.PersistentFlags().String("repo", "", "repository reference (owner/name or URL)")
	rootCmd.PersistentFlags().String("branch", "", "branch holding the table files (default: main)")
	rootCmd.PersistentFlags().String("token", "", "hosting API access token")
	rootCmd.PersistentFlags().String("username", "", "commit author name")

	viper.BindPFlag("repo", rootCmd.PersistentFlags().Lookup("repo"))
	viper.BindPFlag("branch", rootCmd.PersistentFlags().Lookup("branch"))
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GITKV")
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitkv")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "gitkv")
	}
	return ".gitkv"
}

func openStore() (*gitkv.DB, error) {
	repo := viper.GetString("repo")
	if repo == "" {
		return nil, fmt.Errorf("no repository configured (use --repo or GITKV_REPO)")
	}
	return gitkv.Open(repo,
		gitkv.WithToken(viper.GetString("token")),
		gitkv.WithUsername(viper.GetString("username")),
		gitkv.WithBranch(viper.GetString("branch")),
	)
}

// connectTable opens the store with a single registered table and connects
// it.
func connectTable(ctx context.Context, path string) (*gitkv.DB, *gitkv.Table, error) {
	db, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	table := db.Table(path, nil)
	if err := db.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect failed: %w", err)
	}
	return db, table, nil
}

// commitAndWait forces a flush of the queued mutation and waits for its
// durability future.
func commitAndWait(ctx context.Context, db *gitkv.DB, pending *gitkv.Pending) (bool, error) {
	if err := db.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit failed: %w", err)
	}
	return pending.Wait(ctx)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}
