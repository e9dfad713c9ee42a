package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"mocat/internal/config"
	"mocat/internal/dump"
	"mocat/internal/embed"
	"mocat/internal/filewalker"
	"mocat/internal/graph"
	"mocat/internal/mo"
	"mocat/internal/placeholder"
	"mocat/internal/store"
	"mocat/internal/textutil"
	"mocat/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	prog := filepath.Base(os.Args[0])

	rootCmd := &cobra.Command{
		Use:   "mocat <mo-file> <keys|pairs>",
		Short: "GNU gettext .mo catalog toolkit",
		Long:  "Reads compiled gettext translation catalogs (.mo files) and dumps, checks, warehouses and queries their msgid → msgstr pairs.",
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runDump(prog, args)
		},
	}

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(whereCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// printUsage writes the dump invocation summary for the given program
// name.
func printUsage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage:\n  %s mo-filename keys\n  %s mo-filename pairs\n\n", prog, prog)
}

// runDump implements the plain two-argument invocation: load the
// file, decode it and print keys or pairs. A decode failure is
// diagnosed on stderr and dumped as an empty catalog; only a missing
// file or missing arguments fail the process.
func runDump(prog string, args []string) {
	if len(args) < 2 {
		printUsage(os.Stderr, prog)
		os.Exit(1)
	}

	filename, mode := args[0], args[1]

	data, err := os.ReadFile(filename)
	if err != nil {
		printUsage(os.Stderr, prog)
		fmt.Fprintf(os.Stderr, "Could not open file '%s'\n", filename)
		os.Exit(1)
	}

	catalog, err := mo.Decode(data)
	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("Decode failed")
		catalog = mo.Catalog{}
	}

	if !dump.Render(os.Stdout, catalog, mode) {
		printUsage(os.Stderr, prog)
	}
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <directory>",
		Short: "Decode all .mo files under a directory into the warehouse and graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			withEmbeddings, _ := cmd.Flags().GetBool("embed")
			return runIngest(args[0], withEmbeddings)
		},
	}

	cmd.Flags().Bool("embed", false, "Also generate and store msgid embeddings")

	return cmd
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find ingested msgids similar to the given text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topK, _ := cmd.Flags().GetInt("top")
			return runSearch(args[0], topK)
		},
	}

	cmd.Flags().Int("top", 5, "Number of matches to return")

	return cmd
}

func whereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "where <msgid>",
		Short: "List the catalogs that translate a msgid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhere(args[0])
		},
	}
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <msgid>",
		Short: "Print the stored translations of a msgid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(args[0])
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <mo-file>",
		Short: "Report placeholder mismatches between msgids and msgstrs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <directory>",
		Short: "Decode all .mo files under a directory into a corpus file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			return runExport(args[0], format, output)
		},
	}

	cmd.Flags().String("format", "tsv", "Export format: tsv or json")
	cmd.Flags().String("output", "corpus", "Output path (without extension)")

	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// newPgPool connects a pgx pool with pgvector types registered.
func newPgPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	return pool, nil
}

// newNeo4jDriver connects and verifies the Neo4j driver.
func newNeo4jDriver(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")

	return driver, nil
}

// decodedCatalog is the result of decoding one discovered file.
type decodedCatalog struct {
	entry    filewalker.FileEntry
	messages []store.Message
}

// decodeEntry reads and decodes one catalog file into warehouse rows,
// sorted by msgid for deterministic processing.
func decodeEntry(entry filewalker.FileEntry) (decodedCatalog, error) {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return decodedCatalog{}, fmt.Errorf("read catalog: %w", err)
	}

	catalog, err := mo.Decode(data)
	if err != nil {
		return decodedCatalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	messages := make([]store.Message, 0, len(catalog))
	for msgid, msgstr := range catalog {
		messages = append(messages, store.Message{
			Msgid:       msgid,
			Msgstr:      msgstr,
			CatalogPath: entry.Path,
			Locale:      entry.Locale,
		})
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].Msgid < messages[j].Msgid })

	return decodedCatalog{entry: entry, messages: messages}, nil
}

// decodeTree walks root and decodes every .mo file concurrently.
// Files that fail to decode are logged and skipped; one bad catalog
// never aborts the batch.
func decodeTree(ctx context.Context, root string, workers int) ([]decodedCatalog, error) {
	entries, err := filewalker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk input directory: %w", err)
	}

	pool := worker.NewPool[filewalker.FileEntry, decodedCatalog](workers,
		func(ctx context.Context, entry filewalker.FileEntry) (decodedCatalog, error) {
			return decodeEntry(entry)
		},
	)

	var decoded []decodedCatalog
	for _, r := range pool.Run(ctx, entries) {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("file", r.Input.Path).Msg("Skipping catalog")
			continue
		}
		decoded = append(decoded, r.Output)
	}

	return decoded, nil
}

// runIngest handles the `ingest` command.
func runIngest(inputDir string, withEmbeddings bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pgPool, err := newPgPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	neo4jDriver, err := newNeo4jDriver(ctx, cfg)
	if err != nil {
		return err
	}
	defer neo4jDriver.Close(ctx)

	warehouse := store.New(pgPool)
	if err := warehouse.EnsureSchema(ctx, cfg.EmbeddingDimensions); err != nil {
		return fmt.Errorf("ensure warehouse schema: %w", err)
	}

	catalogGraph := graph.New(neo4jDriver)
	if err := catalogGraph.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	decoded, err := decodeTree(ctx, inputDir, cfg.WorkerCount)
	if err != nil {
		return err
	}

	totalRows := 0
	msgidSet := make(map[string]struct{})

	for _, d := range decoded {
		inserted, err := warehouse.Upsert(ctx, d.messages)
		if err != nil {
			return fmt.Errorf("store catalog %s: %w", d.entry.Path, err)
		}
		totalRows += inserted

		if err := catalogGraph.UpsertCatalog(ctx, d.entry.Path, d.entry.Locale, d.messages); err != nil {
			return fmt.Errorf("graph catalog %s: %w", d.entry.Path, err)
		}

		for _, m := range d.messages {
			msgidSet[m.Msgid] = struct{}{}
		}
	}

	if withEmbeddings {
		if cfg.EmbeddingAPIKey == "" {
			log.Warn().Msg("EMBEDDING_API_KEY not set, skipping embeddings")
		} else if err := embedMsgids(ctx, cfg, warehouse, msgidSet); err != nil {
			return err
		}
	}

	log.Info().
		Int("catalogs", len(decoded)).
		Int("rows", totalRows).
		Int("unique_msgids", len(msgidSet)).
		Msg("Ingestion complete")

	return nil
}

// embedMsgids generates and stores embeddings for distinct msgids.
func embedMsgids(ctx context.Context, cfg *config.Config, warehouse *store.Store, msgidSet map[string]struct{}) error {
	msgids := make([]string, 0, len(msgidSet))
	for msgid := range msgidSet {
		msgids = append(msgids, msgid)
	}
	sort.Strings(msgids)

	client := embed.NewClient(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingBaseURL, cfg.EmbeddingDimensions)
	vectors, err := client.EmbedBatch(ctx, msgids, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}

	embeddings := make([]store.Embedding, 0, len(msgids))
	for i, msgid := range msgids {
		if i >= len(vectors) || vectors[i] == nil {
			continue
		}
		embeddings = append(embeddings, store.Embedding{Msgid: msgid, Vector: vectors[i]})
	}

	if err := warehouse.StoreEmbeddings(ctx, embeddings); err != nil {
		return fmt.Errorf("store embeddings: %w", err)
	}

	return nil
}

// runSearch handles the `search` command.
func runSearch(text string, topK int) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	if cfg.EmbeddingAPIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY is required for search")
	}

	pgPool, err := newPgPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	warehouse := store.New(pgPool)

	client := embed.NewClient(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingBaseURL, cfg.EmbeddingDimensions)
	queryVector, err := client.EmbedQuery(ctx, text)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	results, err := warehouse.SearchSimilar(ctx, queryVector, topK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%.3f  %s\n", r.Score, textutil.Quote(r.Msgid))

		translations, err := warehouse.Lookup(ctx, r.Msgid)
		if err != nil {
			log.Warn().Err(err).Str("msgid", textutil.Truncate(r.Msgid, 30)).Msg("Lookup failed")
			continue
		}
		for _, m := range translations {
			fmt.Printf("       %s -> %s  [%s]\n", locTag(m.Locale), textutil.Quote(m.Msgstr), m.CatalogPath)
		}
	}

	return nil
}

// runWhere handles the `where` command.
func runWhere(msgid string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	neo4jDriver, err := newNeo4jDriver(ctx, cfg)
	if err != nil {
		return err
	}
	defer neo4jDriver.Close(ctx)

	occurrences, err := graph.New(neo4jDriver).Where(ctx, msgid)
	if err != nil {
		return fmt.Errorf("query graph: %w", err)
	}

	fmt.Printf("%s appears in %d catalogs:\n", textutil.Quote(msgid), len(occurrences))
	for _, o := range occurrences {
		fmt.Printf("  %s %s -> %s\n", o.CatalogPath, locTag(o.Locale), textutil.Quote(o.Msgstr))
	}

	return nil
}

// runLookup handles the `lookup` command.
func runLookup(msgid string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pgPool, err := newPgPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	messages, err := store.New(pgPool).Lookup(ctx, msgid)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}

	fmt.Printf("%s has %d stored translations:\n", textutil.Quote(msgid), len(messages))
	for _, m := range messages {
		fmt.Printf("  %s %s  [%s]\n", locTag(m.Locale), textutil.Quote(m.Msgstr), m.CatalogPath)
	}

	return nil
}

// runCheck handles the `check` command.
func runCheck(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	catalog, err := mo.Decode(data)
	if err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}

	mismatches := placeholder.CheckCatalog(catalog)
	if len(mismatches) == 0 {
		fmt.Printf("Checked %d entries, no placeholder mismatches.\n", len(catalog))
		return nil
	}

	fmt.Printf("Checked %d entries, %d placeholder mismatches:\n", len(catalog), len(mismatches))
	for _, m := range mismatches {
		fmt.Printf("  %s -> %s\n", textutil.Quote(m.Msgid), textutil.Quote(m.Msgstr))
		if len(m.Missing) > 0 {
			fmt.Printf("    missing in translation: %v\n", m.Missing)
		}
		if len(m.Extra) > 0 {
			fmt.Printf("    unexpected in translation: %v\n", m.Extra)
		}
	}

	return nil
}

// runExport handles the `export` command.
func runExport(inputDir, format, output string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	decoded, err := decodeTree(ctx, inputDir, cfg.WorkerCount)
	if err != nil {
		return err
	}

	var messages []store.Message
	for _, d := range decoded {
		messages = append(messages, d.messages...)
	}

	switch format {
	case "json":
		if err := store.ExportJSON(messages, output+".json"); err != nil {
			return fmt.Errorf("export JSON: %w", err)
		}
	case "tsv":
		if err := store.ExportTSV(messages, output+".tsv"); err != nil {
			return fmt.Errorf("export TSV: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q (want tsv or json)", format)
	}

	log.Info().
		Int("catalogs", len(decoded)).
		Int("entries", len(messages)).
		Str("format", format).
		Msg("Export complete")

	return nil
}

// locTag renders a locale for display, with a placeholder when the
// file path gave no hint.
func locTag(locale string) string {
	if locale == "" {
		return "(?)"
	}
	return "(" + locale + ")"
}
