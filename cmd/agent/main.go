// Package main provides the economics research agent CLI.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gillopy/economics-agent/internal/agent"
	"github.com/gillopy/economics-agent/internal/chunker"
	"github.com/gillopy/economics-agent/internal/config"
	"github.com/gillopy/economics-agent/internal/embedding"
	"github.com/gillopy/economics-agent/internal/extract"
	"github.com/gillopy/economics-agent/internal/index"
	"github.com/gillopy/economics-agent/internal/ingest"
	"github.com/gillopy/economics-agent/internal/llm"
	"github.com/gillopy/economics-agent/internal/memory"
	"github.com/gillopy/economics-agent/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "economics-agent",
	Short: "Document-grounded economics research assistant",
	Long:  "CLI for ingesting economics documents and answering research queries grounded in them",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents into the corpus",
	Long: `Extracts text from the given files, chunks and embeds it, and stores
the result in the local corpus database. Supported types: txt, md, pdf,
csv, json. A file that fails is reported and skipped; the rest of the
run continues.

Environment variables:
  OPENAI_API_KEY  OpenAI API key for embeddings (required)
  DATA_DIR        Corpus database directory (default: ./data)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var listCmd = &cobra.Command{
	Use:   "list-ingested",
	Short: "List documents in the corpus",
	RunE:  runList,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive grounded conversation over the corpus",
	Long: `Starts an interactive session. Each question is answered from the
most similar document chunks plus the conversation so far, and the
conversation is saved to the memory file on exit.`,
	RunE: runChat,
}

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Generate a structured research report for a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runResearch,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Summarize, extract key points and entities from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var (
	ingestType  string
	memoryFile  string
	researchOut string
	analyzeOut  string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "declared document type (txt, md, pdf, csv, json); overrides the extension")
	chatCmd.Flags().StringVar(&memoryFile, "memory", "memory.json", "conversation memory file")
	researchCmd.Flags().StringVar(&researchOut, "output", "", "write the JSON report to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeOut, "output", "", "write the JSON analysis to this file instead of stdout")

	rootCmd.AddCommand(ingestCmd, listCmd, chatCmd, researchCmd, analyzeCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components a command needs.
type app struct {
	cfg      *config.Config
	store    *store.Store
	index    *index.Index
	embedder *embedding.Embedder
	logger   *slog.Logger
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Closing corpus store", "error", err)
	}
}

// setup loads configuration, opens the corpus store, and warms the vector
// index from the persisted chunks.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open corpus store: %w", err)
	}

	ix := index.New(cfg.EmbeddingDimension)
	entries, err := st.LoadEntries(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if len(entries) > 0 {
		if err := ix.Insert(entries); err != nil {
			st.Close()
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		logger.Debug("Warmed vector index", "chunks", len(entries))
	}

	client, err := embedding.NewClient(cfg.EmbeddingModel)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    st,
		index:    ix,
		embedder: embedding.NewEmbedder(client, cfg.EmbedBatchSize),
		logger:   logger,
	}, nil
}

func (a *app) newAgent() (*agent.ResearchAgent, error) {
	completion, err := llm.NewOpenAI()
	if err != nil {
		return nil, err
	}
	mem, err := memory.New(a.cfg.MemoryType, a.cfg.MemoryMaxTokenLimit)
	if err != nil {
		return nil, err
	}
	return agent.New(a.embedder, a.index, mem, completion, agent.Config{
		Model:        a.cfg.LLMModel,
		Temperature:  a.cfg.LLMTemperature,
		MaxTokens:    a.cfg.LLMMaxTokens,
		TopK:         a.cfg.TopK,
		MemoryBudget: a.cfg.MemoryMaxTokenLimit,
	}, a.logger), nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ck, err := chunker.New(a.cfg.ChunkSize, a.cfg.ChunkOverlap)
	if err != nil {
		return err
	}
	pipeline := ingest.NewPipeline(extract.New(), ck, a.embedder, a.index, a.store, a.logger)

	fmt.Printf("Ingesting %d file(s)...\n", len(args))
	result := pipeline.IngestAll(ctx, args, ingestType)

	fmt.Println()
	fmt.Println("Ingest complete!")
	fmt.Printf("  Run:       %s\n", result.RunID)
	fmt.Printf("  Documents: %d/%d\n", len(result.Ingested), result.TotalFiles)
	fmt.Printf("  Chunks:    %d\n", result.TotalChunks)
	fmt.Printf("  Duration:  %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Failed) > 0 {
		fmt.Println()
		fmt.Println("Failed files:")
		for _, failed := range result.Failed {
			fmt.Printf("  - %s: %s\n", failed.Path, failed.Reason)
		}
	}
	if len(result.Ingested) == 0 {
		return fmt.Errorf("no files ingested")
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents ingested yet.")
		return nil
	}

	fmt.Printf("%d document(s) in %s:\n", len(docs), a.store.Path())
	for _, doc := range docs {
		fmt.Printf("  %s  %4d chunks  %s  %s\n",
			doc.ID, doc.ChunkCount, doc.IngestedAt.Local().Format("2006-01-02 15:04"), doc.SourcePath)
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ag, err := a.newAgent()
	if err != nil {
		return err
	}

	if turns, err := memory.LoadFile(memoryFile); err == nil && len(turns) > 0 {
		ag.Memory().Restore(turns)
		fmt.Printf("Restored %d turn(s) from %s\n", len(turns), memoryFile)
	}

	fmt.Printf("Corpus: %d chunk(s). Ask a question, or type 'exit' to quit.\n", a.index.Size())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		ans, err := ag.Answer(ctx, query, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println()
		fmt.Println(ans.Text)
		if len(ans.Citations) > 0 {
			fmt.Println()
			fmt.Println("Sources:")
			for _, c := range ans.Citations {
				fmt.Printf("  [%s] chunk %d\n", c.ID, c.Index)
			}
		}
		fmt.Println()
	}

	if err := memory.SaveFile(memoryFile, ag.Memory().Snapshot()); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	fmt.Printf("Saved conversation to %s\n", memoryFile)
	return scanner.Err()
}

func runResearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ag, err := a.newAgent()
	if err != nil {
		return err
	}

	report, err := ag.Research(ctx, args[0])
	if err != nil {
		return err
	}
	return writeJSON(researchOut, report)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ag, err := a.newAgent()
	if err != nil {
		return err
	}

	path := args[0]
	typ, err := extract.ResolveType(path, "")
	if err != nil {
		return err
	}
	content, err := extract.New().Extract(path, typ)
	if err != nil {
		return err
	}

	analysis, err := ag.Analyze(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}

	// Markdown sources also get a heading outline alongside the analysis.
	if typ == extract.TypeMD {
		src, err := os.ReadFile(path)
		if err == nil {
			if outline, err := extract.Outline(src); err == nil && len(outline) > 0 {
				fmt.Println("Outline:")
				for _, h := range outline {
					fmt.Printf("  %s\n", h)
				}
				fmt.Println()
			}
		}
	}

	return writeJSON(analyzeOut, analysis)
}

// writeJSON marshals v indented and writes it to path, or stdout when
// path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
