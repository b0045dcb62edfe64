package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/SpikeIreland/clarence-engine/internal/clauses"
	"github.com/SpikeIreland/clarence-engine/internal/db"
)

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "Manage clause packs",
}

var packsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available clause packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := clauses.NewStore(database)
		packs, err := store.ListPacks(cmd.Context())
		if err != nil {
			return err
		}
		if len(packs) == 0 {
			fmt.Println("No clause packs. Run `clarence packs seed` to import pack files.")
			return nil
		}
		for _, p := range packs {
			fmt.Printf("%s  %-30s  %s/%s  %d clauses\n", p.ID, p.Name, p.OwnerType, p.PackType, len(p.Clauses))
		}
		return nil
	},
}

var packsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import clause pack YAML files into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		paths, err := clauses.DiscoverPackFiles(".", cfg.PackGlobs)
		if err != nil {
			return fmt.Errorf("discovering pack files: %w", err)
		}
		if len(paths) == 0 {
			fmt.Printf("No pack files matched %v\n", cfg.PackGlobs)
			return nil
		}

		store := clauses.NewStore(database)
		bar := progressbar.Default(int64(len(paths)), "importing packs")
		imported := 0
		for _, path := range paths {
			pack, err := clauses.ReadPackFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nSkipping %s: %v\n", path, err)
				bar.Add(1)
				continue
			}
			if _, err := store.CreatePack(cmd.Context(), *pack); err != nil {
				fmt.Fprintf(os.Stderr, "\nSkipping %s: %v\n", path, err)
				bar.Add(1)
				continue
			}
			imported++
			bar.Add(1)
		}

		fmt.Printf("\nImported %d of %d pack files\n", imported, len(paths))
		return nil
	},
}

var packsLoadSession string

var packsLoadCmd = &cobra.Command{
	Use:   "load <pack-id>",
	Short: "Load a pack's clauses into a session, replacing its selections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if packsLoadSession == "" {
			return fmt.Errorf("--session is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := clauses.NewStore(database)
		selections, err := store.LoadPack(cmd.Context(), packsLoadSession, args[0], false)
		if errors.Is(err, clauses.ErrConfirmationRequired) {
			if !confirmReplace(cmd.Context(), store, packsLoadSession) {
				fmt.Println("Aborted.")
				return nil
			}
			selections, err = store.LoadPack(cmd.Context(), packsLoadSession, args[0], true)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d clauses into session %s\n", len(selections), packsLoadSession)
		return nil
	},
}

// confirmReplace asks before a pack load wipes existing selections.
func confirmReplace(ctx context.Context, store *clauses.Store, sessionID string) bool {
	existing, err := store.ListSelections(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing selections: %v\n", err)
		return false
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Replace %d existing selections in session %s", len(existing), sessionID),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		return false
	}
	return true
}

func init() {
	packsLoadCmd.Flags().StringVar(&packsLoadSession, "session", "", "Session to load the pack into")
	packsCmd.AddCommand(packsListCmd, packsSeedCmd, packsLoadCmd)
	rootCmd.AddCommand(packsCmd)
}
