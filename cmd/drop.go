package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce bool
	dropMatch string
)

// dropCmd deletes the database file, or a single match from it.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the innings database or one match",
	Long: `Permanently delete the SQLite innings database. All stored matches will be
lost; run ingest again afterwards to rebuild. With --match only that match and
its innings are removed.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropMatch, "match", "", "remove only this match id")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if dropMatch != "" {
		return dropOneMatch(dropMatch)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	removed := false
	// WAL mode leaves two side files next to the database.
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		err := os.Remove(p)
		if err == nil {
			removed = true
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("remove database: %w", err)
		}
	}
	if !removed {
		fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropOneMatch(id string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ok, err := db.DeleteMatch(id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if !ok {
		fmt.Fprintf(os.Stdout, "No match %s stored.\n", id)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Deleted match %s.\n", id)
	return nil
}
