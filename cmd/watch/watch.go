package watch

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/verneri/obsidian-export/cmd/export"
	"github.com/verneri/obsidian-export/internal/config"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <vault-path> <output-folder>",
		Short: "Re-export the vault whenever it changes",
		Long: `Watch the vault and re-run the export each time files are created,
modified, renamed or deleted. Bursts of filesystem events are coalesced so an
editor that writes several times in a row triggers a single export.`,
		Example: `  # Keep ./out in sync with the vault
  obsidian-export watch ~/vault ./out

  # Wait longer between exports
  obsidian-export watch ~/vault ./out --debounce 10s`,
		Args: cobra.ExactArgs(2),
		RunE: runWatch,
	}
	cmd.Flags().Duration("debounce", 0, "Minimum delay between two exports (default from config, 2s)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	vaultPath, outputPath := args[0], args[1]

	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if quiet {
		verbose = false
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debounce") {
		cfg.Watch.Debounce, _ = cmd.Flags().GetDuration("debounce")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	debounce := cfg.Watch.Debounce
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, vaultPath); err != nil {
		return err
	}

	doExport := func() {
		result, warnings, err := export.Execute(vaultPath, "", cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if err := export.WriteResult(cmd.Context(), result, outputPath, cfg.Export.Workers, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "WARNING: %s\n", warning)
		}
		if !quiet {
			fmt.Printf("Exported %d files to %s\n", len(result), outputPath)
		}
	}

	if !quiet {
		fmt.Printf("Watching %s (debounce %s), press Ctrl-C to stop\n", vaultPath, debounce)
	}
	doExport()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// One token per debounce interval; events seen in between set the dirty
	// flag and are picked up on the next tick.
	limiter := rate.NewLimiter(rate.Every(debounce), 1)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	dirty := false

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isHidden(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				dirty = true
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = addRecursive(watcher, event.Name)
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "WARNING: watch error: %v\n", err)
		case <-ticker.C:
			if dirty && limiter.Allow() {
				dirty = false
				doExport()
			}
		case <-sigCh:
			if !quiet {
				fmt.Println("\nStopping watcher")
			}
			return nil
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
