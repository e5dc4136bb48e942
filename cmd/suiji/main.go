package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	suiji "github.com/QinMou000/SuiJi/pkg"
	pkgdb "github.com/QinMou000/SuiJi/pkg/db"
	"github.com/QinMou000/SuiJi/pkg/store"
	"github.com/QinMou000/SuiJi/pkg/utils"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:     "suiji",
	Short:   "A local-first journal for notes, expenses and countdowns.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", suiji.Version),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for suiji.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(suiji completion bash)

  Bash (persist):
    $ suiji completion bash > /etc/bash_completion.d/suiji

  Zsh:
    $ suiji completion zsh > "${fpath[1]}/_suiji"

  Fish:
    $ suiji completion fish | source
    $ suiji completion fish > ~/.config/fish/completions/suiji.fish

  PowerShell:
    PS> suiji completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of suiji",
	Long:  `All software has versions. This is suiji's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(suiji.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the Suiji database",
	Long:  `Provides commands for managing the Suiji SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the Suiji database schema to the latest version",
	Long: `Connects to the SQLite database at the specified path (via --dbpath) and applies any
pending schema migrations. If the database does not exist it is created and initialized
with the latest schema, including the default category and account sets.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		walEnabled, _ := cmd.Flags().GetBool("wal")
		syncMode, _ := cmd.Flags().GetString("sync")

		resolvedPath, err := utils.ResolveAndEnsureDBPath(dbPath)
		if err != nil {
			return err
		}

		fmt.Printf("Upgrading database at: %s (WAL: %t, Sync: %s)\n", resolvedPath, walEnabled, syncMode)

		dbConn, err := pkgdb.OpenDBConnection(resolvedPath, walEnabled, syncMode)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return pkgdb.UpgradeDB(cmd.Context(), dbConn, resolvedPath, pkgdb.TargetSchemaVersion)
	},
}

// openStore resolves the --dbpath flag and opens a fully migrated store.
func openStore() (*store.Store, error) {
	resolvedPath, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}
	return store.Open(resolvedPath)
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "Path to the Suiji SQLite database file (e.g., ./suiji.db)")

	dbUpgradeCmd.Flags().Bool("wal", true, "Enable SQLite WAL (Write-Ahead Logging) mode.")
	dbUpgradeCmd.Flags().String("sync", "NORMAL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA).")
	dbCmd.AddCommand(dbUpgradeCmd)

	initNotesCmd()
	initFinanceCmd()
	initCountdownsCmd()
	initBackupCmd()

	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, notesCmd, tagsCmd, searchCmd,
		transactionsCmd, categoriesCmd, accountsCmd, countdownsCmd, backupCmd, serverCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
