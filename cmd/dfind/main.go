package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AvengeMedia/dankfind/internal/catalog"
	"github.com/AvengeMedia/dankfind/internal/client"
	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/indexer"
	"github.com/AvengeMedia/dankfind/internal/log"
	"github.com/AvengeMedia/dankfind/internal/query"
	"github.com/AvengeMedia/dankfind/internal/server"
	"github.com/AvengeMedia/dankfind/internal/store"
	"github.com/AvengeMedia/dankfind/internal/tags"
	"github.com/AvengeMedia/dankfind/internal/watcher"
)

var (
	Version   string = "dev"
	buildTime string = "unknown"
	commit    string = "unknown"

	configFile    string
	rootDir       string
	storePath     string
	listenAddr    string
	workerCount   int
	maxDepth      int
	includeHidden bool
	noGitignore   bool
	noWatch       bool

	searchLimit    int
	searchJSON     bool
	searchStream   bool
	searchIndexed  bool
	searchSnapshot string

	filesLimit int
	exportOut  string
	importIn   string
)

var errLimitReached = errors.New("limit reached")

var (
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dirStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

var rootCmd = &cobra.Command{
	Use:   "dfind",
	Short: "Desktop file finder",
	Long:  "A file finder that catalogues filesystem metadata and searches it with a structured query language and fuzzy ranking",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the finder service",
	RunE:  runServe,
}

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search files by walking a tree or querying the catalogue",
	Long: `Search joins its arguments into one query, walks the working directory
(or --root) and prints matches ranked by fuzzy score. With --indexed,
--store or --snapshot the walk is skipped and an existing catalogue is
queried instead.

Plain words fuzzy-match the path. Marker prefixes narrow the match:
prefix:, suffix:, suffix_name:, extension:, mime:, tag: (or #), exact:
(or @), regex:, before:, after:. A leading dash excludes, and a negated
bare word means the path must not contain it. Quote atoms that carry
spaces. Start the query with -- when its first atom is an exclusion:

  dfind search -- report -extension:pdf -#archived`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the catalogue",
}

var indexGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run a full index of the configured root",
	RunE:  runIndexGenerate,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalogue statistics",
	RunE:  runIndexStatus,
}

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalogue to a snapshot file",
	RunE:  runIndexExport,
}

var indexImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a snapshot file into the catalogue",
	RunE:  runIndexImport,
}

var indexFilesCmd = &cobra.Command{
	Use:   "files [prefix]",
	Short: "List catalogued records",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndexFiles,
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Read and write file tags",
}

var tagGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Show the tags on a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagGet,
}

var tagSetCmd = &cobra.Command{
	Use:   "set <path> [tags...]",
	Short: "Replace the tags on a file (no tags clears them)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTagSet,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the configured root and keep the catalogue current",
	RunE:  runWatch,
}

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the service watcher status",
	RunE:  runWatchStatus,
}

var watchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the service watcher",
	RunE:  runWatchStart,
}

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the service watcher",
	RunE:  runWatchStop,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		log.Infof("dfind version %s", Version)
		log.Infof("  Build time: %s", buildTime)
		log.Infof("  Commit: %s", commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: ~/.config/dankfind/config.toml)")

	serveCmd.Flags().StringVar(&rootDir, "root", "", "directory tree to catalogue")
	serveCmd.Flags().StringVar(&storePath, "store", "", "catalogue store path")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address")
	serveCmd.Flags().IntVar(&workerCount, "workers", 0, "number of walker goroutines")
	serveCmd.Flags().IntVar(&maxDepth, "max-depth", -1, "maximum directory depth to walk (0 = unlimited)")
	serveCmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "catalogue hidden files and directories")
	serveCmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "do not honor .gitignore and .ignore files")
	serveCmd.Flags().BoolVar(&noWatch, "no-watch", false, "disable automatic file watching")

	searchCmd.Flags().StringVar(&rootDir, "root", "", "tree to search (default: working directory)")
	searchCmd.Flags().StringVar(&storePath, "store", "", "query this catalogue store instead of walking")
	searchCmd.Flags().BoolVar(&searchIndexed, "indexed", false, "query the configured catalogue store instead of walking")
	searchCmd.Flags().StringVar(&searchSnapshot, "snapshot", "", "query a catalogue snapshot file instead of walking")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 for all)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results in JSON format")
	searchCmd.Flags().BoolVar(&searchStream, "stream", false, "print matching paths as they are found (unranked)")
	searchCmd.Flags().IntVar(&maxDepth, "max-depth", -1, "maximum directory depth to walk (0 = unlimited)")
	searchCmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "match hidden files and directories")
	searchCmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "do not honor .gitignore and .ignore files")

	indexCmd.PersistentFlags().StringVar(&rootDir, "root", "", "directory tree to catalogue")
	indexCmd.PersistentFlags().StringVar(&storePath, "store", "", "catalogue store path")

	indexFilesCmd.Flags().IntVar(&filesLimit, "limit", 100, "maximum number of records to list")
	indexExportCmd.Flags().StringVar(&exportOut, "out", "", "snapshot file to write")
	indexExportCmd.MarkFlagRequired("out")
	indexImportCmd.Flags().StringVar(&importIn, "in", "", "snapshot file to read")
	indexImportCmd.MarkFlagRequired("in")

	watchCmd.Flags().StringVar(&rootDir, "root", "", "directory tree to watch")
	watchCmd.Flags().StringVar(&storePath, "store", "", "catalogue store path")

	indexCmd.AddCommand(indexGenerateCmd)
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexExportCmd)
	indexCmd.AddCommand(indexImportCmd)
	indexCmd.AddCommand(indexFilesCmd)

	tagCmd.AddCommand(tagGetCmd)
	tagCmd.AddCommand(tagSetCmd)

	watchCmd.AddCommand(watchStatusCmd)
	watchCmd.AddCommand(watchStartCmd)
	watchCmd.AddCommand(watchStopCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func buildConfig(cmd *cobra.Command) *config.Config {
	cfgPath := configFile
	if cfgPath == "" {
		cfgPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if rootDir != "" {
		cfg.RootDir = rootDir
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if workerCount > 0 {
		cfg.WorkerCount = workerCount
	}
	if maxDepth >= 0 {
		cfg.MaxDepth = maxDepth
	}
	if cmd.Flags().Changed("include-hidden") {
		cfg.IncludeHidden = includeHidden
	}
	if cmd.Flags().Changed("no-gitignore") {
		cfg.UseGitignore = !noGitignore
	}

	return cfg
}

func newBuilder() *catalog.Builder {
	return catalog.NewBuilder(tags.NewStore())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	backend, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	builder := newBuilder()
	idx := indexer.New(cfg, backend, builder)

	count, err := backend.Count()
	if err != nil {
		return err
	}

	if count == 0 {
		log.Infof("catalogue is empty, building initial index...")
		go func() {
			if stats, err := idx.Run(context.Background(), cfg.RootDir); err != nil {
				log.Errorf("initial index build failed: %v", err)
			} else {
				log.Infof("initial index build complete: %d files", stats.TotalFiles)
			}
		}()
	}

	w, err := watcher.New(cfg, backend, builder)
	if err != nil {
		return err
	}

	if !noWatch {
		if err := w.Start(); err != nil {
			log.Errorf("failed to start watcher: %v", err)
			log.Infof("continuing without file watching")
		}
	}

	httpServer := server.NewHTTP(cfg.ListenAddr, backend, idx, w, cfg.RootDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Infof("received shutdown signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if w.IsRunning() {
			w.Stop()
		}

		return httpServer.Shutdown(ctx)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := query.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}

	backend, err := searchBackend(cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	if searchStream {
		return streamResults(backend, q)
	}

	results, err := backend.RunQuery(q)
	if err != nil {
		return err
	}

	total := len(results)
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	log.Infof("found %d results", total)
	for _, r := range results {
		fmt.Println(renderResult(r))
	}

	return nil
}

// searchBackend picks where the query runs: a saved snapshot, an
// existing store, or a fresh walk of the tree into memory.
func searchBackend(cmd *cobra.Command) (store.Backend, error) {
	cfg := buildConfig(cmd)

	if searchSnapshot != "" {
		cat, err := catalog.Load(searchSnapshot)
		if err != nil {
			return nil, err
		}
		return store.NewMemoryFrom(cat), nil
	}

	if searchIndexed || cmd.Flags().Changed("store") {
		backend, err := store.OpenBolt(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		count, err := backend.Count()
		if err != nil {
			backend.Close()
			return nil, err
		}
		if count == 0 {
			backend.Close()
			return nil, fmt.Errorf("catalogue is empty - run 'dfind index generate' or 'dfind serve' first")
		}
		return backend, nil
	}

	root := rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}

	backend := store.NewMemory()
	idx := indexer.New(cfg, backend, newBuilder())
	if _, err := idx.Run(context.Background(), root); err != nil {
		return nil, err
	}
	return backend, nil
}

func streamResults(backend store.Backend, q *query.Query) error {
	n := 0
	err := backend.EachMatch(q, func(r query.Result) error {
		fmt.Println(r.File.Path)
		n++
		if searchLimit > 0 && n >= searchLimit {
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return err
	}
	return nil
}

func renderResult(r query.Result) string {
	path := r.File.Path
	switch r.File.Kind {
	case catalog.KindDirectory:
		path = dirStyle.Render(path)
	case catalog.KindSymlink:
		path = linkStyle.Render(path)
	}

	line := fmt.Sprintf("%s %s", scoreStyle.Render(fmt.Sprintf("%6d", r.Score)), path)
	if len(r.File.Tags) > 0 {
		line += " " + tagStyle.Render("#"+strings.Join(r.File.Tags, " #"))
	}
	return line
}

func runIndexGenerate(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	status, err := client.New(cfg.ListenAddr).Reindex()
	if err == nil {
		log.Infof("%s", status)
		return nil
	}

	backend, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("service not running and cannot open store: %v", err)
	}
	defer backend.Close()

	idx := indexer.New(cfg, backend, newBuilder())

	log.Infof("indexing %s...", cfg.RootDir)
	stats, err := idx.Reindex(context.Background(), cfg.RootDir)
	if err != nil {
		return err
	}

	log.Infof("indexed %d files in %s (%d entries skipped)", stats.TotalFiles, stats.IndexDuration, stats.SkippedEntries)
	return nil
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	if stats, err := client.New(cfg.ListenAddr).Stats(); err == nil {
		printStats(stats.Records, stats.LastIndex)
		return nil
	}

	backend, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("service not running and cannot open store: %v", err)
	}
	defer backend.Close()

	count, err := backend.Count()
	if err != nil {
		return err
	}
	last, err := backend.Stats()
	if err != nil {
		return err
	}

	printStats(count, last)
	return nil
}

func printStats(records int, last *config.IndexStats) {
	log.Infof("Catalogue statistics:")
	log.Infof("  Records: %d", records)
	if last == nil {
		log.Infof("  Last index: never")
		return
	}
	log.Infof("  Indexed files: %d", last.TotalFiles)
	log.Infof("  Skipped entries: %d", last.SkippedEntries)
	log.Infof("  Last index: %s", last.LastIndexTime.Format("2006-01-02 15:04:05"))
	log.Infof("  Duration: %s", last.IndexDuration)
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	backend, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	cat := catalog.New()
	if err := backend.Each(func(f *catalog.File) error {
		cat.Upsert(f)
		return nil
	}); err != nil {
		return err
	}

	if err := cat.Save(exportOut); err != nil {
		return err
	}

	log.Infof("exported %d records to %s", cat.Len(), exportOut)
	return nil
}

func runIndexImport(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	cat, err := catalog.Load(importIn)
	if err != nil {
		return err
	}

	backend, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	for _, f := range cat.Files() {
		if _, err := backend.Upsert(f); err != nil {
			return err
		}
	}

	log.Infof("imported %d records from %s", cat.Len(), importIn)
	return nil
}

func runIndexFiles(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	cfg := buildConfig(cmd)

	backend, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	shown, total := 0, 0
	if err := backend.Each(func(f *catalog.File) error {
		if prefix != "" && !strings.HasPrefix(f.Path, prefix) {
			return nil
		}
		total++
		if filesLimit > 0 && shown >= filesLimit {
			return nil
		}
		fmt.Printf("%s (%s, %s)\n", f.Path, f.Kind, f.LastModified.Format("2006-01-02"))
		shown++
		return nil
	}); err != nil {
		return err
	}

	if total > shown {
		fmt.Printf("(showing %d of %d records)\n", shown, total)
	}
	return nil
}

func runTagGet(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	list, err := tags.NewStore().Get(path)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Println("(no tags)")
		return nil
	}
	fmt.Println(strings.Join(list, ", "))
	return nil
}

func runTagSet(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	if err := tags.NewStore().Set(path, args[1:]); err != nil {
		return err
	}

	if len(args) > 1 {
		log.Infof("tagged %s: %s", path, strings.Join(args[1:], ", "))
	} else {
		log.Infof("cleared tags on %s", path)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	backend, err := store.OpenBolt(cfg.StorePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	w, err := watcher.New(cfg, backend, newBuilder())
	if err != nil {
		return err
	}

	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	log.Infof("watching %s (ctrl-c to stop)", cfg.RootDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	return nil
}

func runWatchStatus(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	status, err := client.New(cfg.ListenAddr).WatchStatus()
	if err != nil {
		return err
	}

	log.Infof("Watcher status: %s", status)
	return nil
}

func runWatchStart(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	status, err := client.New(cfg.ListenAddr).WatchStart()
	if err != nil {
		return err
	}

	log.Infof("%s", status)
	return nil
}

func runWatchStop(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	status, err := client.New(cfg.ListenAddr).WatchStop()
	if err != nil {
		return err
	}

	log.Infof("%s", status)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
