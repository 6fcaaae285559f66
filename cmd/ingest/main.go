package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docqa-orchestrator/internal/di"
	"docqa-orchestrator/internal/infra"
	"docqa-orchestrator/internal/infra/config"
	"docqa-orchestrator/internal/infra/logger"
	"docqa-orchestrator/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents into the passage store",
	Long: `ingest chunks documents, embeds each chunk, and stores the results
in the passage store under a fresh ingestion batch id.

Example usage:
  ingest file docs/guide.md          # Ingest a single file
  ingest dir docs/                   # Ingest all *.md files in a directory`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var fileCmd = &cobra.Command{
	Use:   "file <path>...",
	Short: "Ingest one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFile,
}

var dirCmd = &cobra.Command{
	Use:   "dir <path>",
	Short: "Ingest all markdown files in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDir,
}

func init() {
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(dirCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runFile(cmd *cobra.Command, args []string) error {
	docs := make([]usecase.IngestDocument, 0, len(args))
	for _, path := range args {
		doc, err := readDocument(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	return ingest(cmd.Context(), docs)
}

func runDir(cmd *cobra.Command, args []string) error {
	paths, err := filepath.Glob(filepath.Join(args[0], "*.md"))
	if err != nil {
		return fmt.Errorf("failed to list directory: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no markdown files found in %s", args[0])
	}

	docs := make([]usecase.IngestDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	return ingest(cmd.Context(), docs)
}

func readDocument(path string) (usecase.IngestDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return usecase.IngestDocument{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return usecase.IngestDocument{
		Source: filepath.ToSlash(path),
		Text:   string(content),
	}, nil
}

func ingest(ctx context.Context, docs []usecase.IngestDocument) error {
	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)

	dsn := cfg.DSN() + "?sslmode=disable"
	dbPool, err := infra.NewPostgresDB(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer dbPool.Close()

	components, err := di.NewApplicationComponents(cfg, dbPool, log)
	if err != nil {
		return fmt.Errorf("failed to wire components: %w", err)
	}

	out, err := components.IngestUsecase.Execute(ctx, usecase.IngestInput{Documents: docs})
	if err != nil {
		return err
	}

	fmt.Printf("Ingestion %s complete: %d documents, %d chunks\n",
		out.Ingestion.ID, len(docs), out.Ingestion.ChunksProcessed)
	return nil
}
