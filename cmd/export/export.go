package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/verneri/obsidian-export/internal/config"
	"github.com/verneri/obsidian-export/internal/exporter"
	"github.com/verneri/obsidian-export/internal/safety"
	"github.com/verneri/obsidian-export/internal/workerpool"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <vault-path> <output-folder>",
		Short: "Export a vault to a standard Markdown tree",
		Long: `Export an Obsidian vault into a directory of standard Markdown.

Wiki links become regular markdown links, embeds are expanded in place, and
binary attachments are copied as-is. References that cannot be resolved are
reported as warnings and left untouched, except that a link to a heading or
block of a missing note keeps its link shape.`,
		Example: `  # Export a vault
  obsidian-export export ~/vault ./out

  # Only export one folder, still resolving references into the rest
  obsidian-export export ~/vault ./out --start-at ~/vault/blog

  # Strip all frontmatter from the output
  obsidian-export export ~/vault ./out --frontmatter never`,
		Args: cobra.ExactArgs(2),
		RunE: runExport,
	}

	cmd.Flags().String("frontmatter", "auto", "Frontmatter handling: auto, always or never")
	cmd.Flags().Bool("no-recursive-embeds", false, "Render a repeated embed as a link instead of expanding it")
	cmd.Flags().String("start-at", "", "Only export files at or below this sub-path")
	cmd.Flags().String("ignore-file", ".export-ignore", "Name of the per-directory ignore file")
	cmd.Flags().Bool("follow-symlinks", false, "Follow symbolic links while scanning the vault")
	cmd.Flags().Bool("include-hidden", false, "Include hidden files and directories")
	cmd.Flags().Int("embed-depth", exporter.DefaultEmbedDepth, "Maximum depth of nested embeds")
	cmd.Flags().Bool("strict", false, "Fail on malformed frontmatter or reference syntax instead of warning")
	cmd.Flags().Bool("backup", false, "Snapshot an existing output directory before overwriting it")
	cmd.Flags().Int("workers", 0, "Parallel writers for the output tree (0 = number of CPUs)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
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
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	startAt, _ := cmd.Flags().GetString("start-at")
	backup, _ := cmd.Flags().GetBool("backup")

	start := time.Now()
	result, warnings, err := Execute(vaultPath, startAt, cfg)
	if err != nil {
		return err
	}

	if backup {
		if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
			manager := safety.NewBackupManager(filepath.Join(filepath.Dir(outputPath), ".obsidian-export-backups"))
			b, err := manager.CreateDirectoryBackup(outputPath)
			if err != nil {
				return fmt.Errorf("backing up output directory: %w", err)
			}
			if verbose {
				fmt.Printf("Backed up existing output to %s\n", b.Dir)
			}
		}
	}

	if err := WriteResult(cmd.Context(), result, outputPath, cfg.Export.Workers, verbose); err != nil {
		return err
	}

	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", warning)
	}
	if !quiet {
		fmt.Printf("Exported %d files to %s in %s\n",
			len(result), outputPath, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// Execute runs the core driver with the loaded configuration and returns the
// result map together with the run's warnings. The watch command reuses it.
func Execute(vaultPath, startAt string, cfg *config.Config) (map[string][]byte, []string, error) {
	strategy, err := exporter.ParseFrontmatterStrategy(cfg.Export.FrontmatterStrategy)
	if err != nil {
		return nil, nil, err
	}

	exp := exporter.New(vaultPath).
		FrontmatterStrategy(strategy).
		ProcessEmbedsRecursively(cfg.Export.RecursiveEmbeds).
		EmbedDepth(cfg.Export.EmbedDepth).
		Strict(cfg.Export.Strict).
		WalkOptions(exporter.WalkOptions{
			IgnoreFilename: cfg.Vault.IgnoreFilename,
			FollowSymlinks: cfg.Vault.FollowSymlinks,
			IncludeHidden:  cfg.Vault.IncludeHidden,
		})
	if startAt != "" {
		exp.StartAt(startAt)
	}

	result, err := exp.Run()
	if err != nil {
		return nil, nil, err
	}
	return result, exp.Warnings(), nil
}

// WriteResult materializes the result map under outputPath, fanning the
// writes out over a worker pool.
func WriteResult(ctx context.Context, result map[string][]byte, outputPath string, workers int, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tasks := make([]workerpool.Task, 0, len(result))
	for destKey, content := range result {
		destKey, content := destKey, content
		tasks = append(tasks, func(ctx context.Context) error {
			target := filepath.Join(outputPath, filepath.FromSlash(destKey))
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return &exporter.WriteError{Path: target, Err: err}
			}
			if err := os.WriteFile(target, content, 0644); err != nil {
				return &exporter.WriteError{Path: target, Err: err}
			}
			if verbose {
				fmt.Printf("Wrote: %s\n", destKey)
			}
			return nil
		})
	}

	if errs := workerpool.New(workers).Run(ctx, tasks); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("frontmatter") {
		cfg.Export.FrontmatterStrategy, _ = cmd.Flags().GetString("frontmatter")
	}
	if noRecursive, _ := cmd.Flags().GetBool("no-recursive-embeds"); noRecursive {
		cfg.Export.RecursiveEmbeds = false
	}
	if cmd.Flags().Changed("ignore-file") {
		cfg.Vault.IgnoreFilename, _ = cmd.Flags().GetString("ignore-file")
	}
	if follow, _ := cmd.Flags().GetBool("follow-symlinks"); follow {
		cfg.Vault.FollowSymlinks = true
	}
	if hidden, _ := cmd.Flags().GetBool("include-hidden"); hidden {
		cfg.Vault.IncludeHidden = true
	}
	if cmd.Flags().Changed("embed-depth") {
		cfg.Export.EmbedDepth, _ = cmd.Flags().GetInt("embed-depth")
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		cfg.Export.Strict = true
	}
	if cmd.Flags().Changed("workers") {
		cfg.Export.Workers, _ = cmd.Flags().GetInt("workers")
	}
}
