package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"modbrowse/internal/cache"
	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
	apperrors "modbrowse/internal/errors"
	"modbrowse/internal/format"
	"modbrowse/internal/hardware"
	"modbrowse/internal/lockfile"
	"modbrowse/internal/logging"
	"modbrowse/internal/quality"
	"modbrowse/internal/store"
	"modbrowse/internal/system"
	"modbrowse/internal/tui"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command provided")
	}
	cmd := args[0]
	switch cmd {
	case "browse":
		return handleBrowse(ctx, args[1:])
	case "import":
		return handleImport(ctx, args[1:])
	case "stats":
		return handleStats(ctx, args[1:])
	case "hardware":
		return handleHardware(ctx, args[1:])
	case "config":
		return handleConfig(ctx, args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Println(strings.TrimSpace(`modbrowse - GGUF model catalog browser

Usage:
  modbrowse <command> [flags]

Commands:
  browse            Open the interactive catalog browser
  import            Import a JSON catalog export into the local cache
  stats             Print engagement statistics for the catalog
  hardware          Print hardware requirement estimates per model
  config validate   Validate a YAML config file
  config print      Print the loaded config as JSON
  version           Print version
  help              Show this help

Flags:
  --config PATH     Path to YAML config file (or MODBROWSE_CONFIG env var; default: ~/.config/modbrowse/config.yml)
  --log-level L     Log level: debug|info|warn|error (per command)
  --json            JSON log output (per command)
`))
}

// loadConfig resolves the config path like the flag help describes. A missing
// file is only an error when the path was given explicitly; otherwise the
// built-in defaults apply.
func loadConfig(cfgPath string) (*config.Config, error) {
	explicit := cfgPath != ""
	if cfgPath == "" {
		if env := os.Getenv("MODBROWSE_CONFIG"); env != "" {
			cfgPath = env
			explicit = true
		} else if h, err := os.UserHomeDir(); err == nil && h != "" {
			cfgPath = filepath.Join(h, ".config", "modbrowse", "config.yml")
		}
	}
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			return config.Load(cfgPath)
		} else if explicit {
			return nil, fmt.Errorf("config file not found: %s", cfgPath)
		}
	}
	return config.Defaults(), nil
}

// loadModels prefers the sqlite cache and falls back to the JSON export,
// seeding the cache on the way through.
func loadModels(c *config.Config, catalogPath string, log *logging.Logger) ([]catalog.Model, string, error) {
	db, err := cache.Open(c)
	if err != nil {
		return nil, "", apperrors.DatabaseError(err)
	}
	defer func() { _ = db.SQL.Close() }()

	if catalogPath == "" {
		if n, err := db.Count(); err == nil && n > 0 {
			log.Debugf("loading %d models from cache %s", n, db.Path)
			return db.ListModels()
		}
		catalogPath = c.General.CatalogPath
	}
	ex, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return nil, "", apperrors.CatalogError(catalogPath, err)
	}
	log.Infof("loaded %d models from %s", len(ex.Models), catalogPath)
	if err := db.ReplaceAll(ex.Models, ex.LastUpdated); err != nil {
		log.Warnf("cache not updated: %v", err)
	}
	return ex.Models, ex.LastUpdated, nil
}

func handleBrowse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "warn", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	catalogPath := fs.String("catalog", "", "JSON catalog export (overrides cache and config)")
	noQuality := fs.Bool("no-spam-filter", false, "skip the quality filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	log := logging.New(*logLevel, *jsonOut)

	st := store.New(format.Humanize{})
	if c.UI.ItemsPerPage > 0 {
		pp := c.UI.ItemsPerPage
		if err := st.Apply(store.Update{Pagination: &store.PaginationPatch{ItemsPerPage: &pp}}); err != nil {
			return err
		}
	}
	if strings.EqualFold(c.UI.ViewMode, string(store.ViewList)) {
		st.SetViewMode(store.ViewList)
	}

	st.SetLoading(true, "")
	models, lastUpdated, err := loadModels(c, *catalogPath, log)
	if err != nil {
		st.SetLoading(false, err.Error())
	} else {
		if c.Quality.Enabled && !*noQuality {
			var report quality.Report
			models, report = quality.New(c.Quality).FilterModels(models)
			log.Infof("quality filter: kept %d of %d", report.Kept, report.Original)
		}
		st.SetModels(models, lastUpdated)
	}

	p := tea.NewProgram(tui.New(c, st), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func handleImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	catalogPath := fs.String("catalog", "", "JSON catalog export to import (default: config catalog_path)")
	noQuality := fs.Bool("no-spam-filter", false, "import everything, skip the quality filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	log := logging.New(*logLevel, *jsonOut)

	path := *catalogPath
	if path == "" {
		path = c.General.CatalogPath
	}
	ex, err := catalog.LoadFile(path)
	if err != nil {
		return apperrors.CatalogError(path, err)
	}
	models := ex.Models
	report := quality.Report{Original: len(models), Kept: len(models)}
	if c.Quality.Enabled && !*noQuality {
		models, report = quality.New(c.Quality).FilterModels(models)
	}

	db, err := cache.Open(c)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	defer func() { _ = db.SQL.Close() }()

	// The rebuilt cache lands near the export in size; require room for it.
	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
		need := uint64(fi.Size()) * 2
		if ok, avail, err := system.HasSpaceFor(c.General.DataRoot, need); err == nil && !ok {
			return apperrors.DiskSpaceError(avail, need)
		}
	}

	lock, err := lockfile.Acquire(filepath.Join(c.General.DataRoot, "import.lock"))
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	if err := db.ReplaceAll(models, ex.LastUpdated); err != nil {
		return apperrors.DatabaseError(err)
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"cache":            db.Path,
			"imported":         report.Kept,
			"original":         report.Original,
			"removed_small":    report.RemovedSmall,
			"removed_variants": report.RemovedVariants,
			"removed_capped":   report.RemovedCapped,
		})
	}
	log.Infof("imported %d of %d models into %s (small=%d variants=%d capped=%d)",
		report.Kept, report.Original, db.Path,
		report.RemovedSmall, report.RemovedVariants, report.RemovedCapped)
	return nil
}

func handleStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "warn", "log level")
	jsonOut := fs.Bool("json", false, "json output")
	catalogPath := fs.String("catalog", "", "JSON catalog export (overrides cache)")
	minLikes := fs.String("min-likes", "", "only count models with at least this many likes")
	maxLikes := fs.String("max-likes", "", "only count models with at most this many likes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	log := logging.New(*logLevel, *jsonOut)

	models, lastUpdated, err := loadModels(c, *catalogPath, log)
	if err != nil {
		return err
	}
	st := store.New(format.Humanize{})
	st.SetModels(models, lastUpdated)
	if *minLikes != "" || *maxLikes != "" {
		st.SetEngagementFilter(*minLikes, *maxLikes)
	}
	stats := st.EngagementFilterStats()

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"models":            len(models),
			"total_likes":       stats.TotalLikes,
			"avg_likes":         stats.AvgLikes,
			"max_likes":         stats.MaxLikes,
			"models_with_likes": stats.ModelsWithLikes,
			"filtered":          stats.IsFiltered,
			"in_range":          stats.FilteredCount,
		})
	}
	fmt.Printf("Models: %d\n", len(models))
	fmt.Printf("Total likes: %s\n", humanize.Comma(stats.TotalLikes))
	fmt.Printf("Average likes: %.1f\n", stats.AvgLikes)
	fmt.Printf("Max likes: %s\n", humanize.Comma(stats.MaxLikes))
	fmt.Printf("Models with likes: %d\n", stats.ModelsWithLikes)
	if stats.IsFiltered {
		fmt.Printf("In range [%d, %s]: %d\n", stats.Min, stats.Max, stats.FilteredCount)
	}
	return nil
}

func handleHardware(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("hardware", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "warn", "log level")
	jsonOut := fs.Bool("json", false, "json output")
	catalogPath := fs.String("catalog", "", "JSON catalog export (overrides cache)")
	limit := fs.Int("limit", 20, "number of models to show (0 = all)")
	ramBudget := fs.Int("ram", 0, "also recommend the best quantization fitting this many GB of RAM")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	log := logging.New(*logLevel, *jsonOut)

	models, _, err := loadModels(c, *catalogPath, log)
	if err != nil {
		return err
	}
	if *limit > 0 && len(models) > *limit {
		models = models[:*limit]
	}
	calc := hardware.New(c.Hardware)

	if *jsonOut {
		type row struct {
			ID          string `json:"id"`
			Params      int64  `json:"params,omitempty"`
			MinRAMGB    int    `json:"min_ram_gb"`
			MinCPUCores int    `json:"min_cpu_cores"`
			GPURequired bool   `json:"gpu_required"`
			Tier        string `json:"tier"`
			FitQuant    string `json:"fit_quant,omitempty"`
		}
		rows := make([]row, 0, len(models))
		for _, m := range models {
			req := calc.Estimate(m)
			r := row{
				ID:          m.ID,
				Params:      req.EstimatedParams,
				MinRAMGB:    req.MinRAMGB,
				MinCPUCores: req.MinCPUCores,
				GPURequired: req.GPURequired,
				Tier:        string(req.Tier),
			}
			if *ramBudget > 0 {
				if q, ok := calc.RecommendQuant(req.EstimatedParams, *ramBudget); ok {
					r.FitQuant = q
				}
			}
			rows = append(rows, r)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if avail, err := system.AvailableSpace(c.General.DataRoot); err == nil {
		fmt.Printf("Disk available at %s: %s\n\n", c.General.DataRoot, humanize.Bytes(avail))
	}
	fmt.Printf("%-48s %8s %8s %6s %5s %-12s", "MODEL", "SIZE", "RAM", "CORES", "GPU", "TIER")
	if *ramBudget > 0 {
		fmt.Printf(" FITS %dGB AS", *ramBudget)
	}
	fmt.Println()
	for _, m := range models {
		req := calc.Estimate(m)
		gpu := "no"
		if req.GPURequired {
			gpu = "yes"
		}
		fmt.Printf("%-48s %8s %6dGB %6d %5s %-12s",
			clip(m.ID, 48), humanize.Bytes(uint64(m.FileSize)), req.MinRAMGB, req.MinCPUCores, gpu, req.Tier)
		if *ramBudget > 0 {
			if q, ok := calc.RecommendQuant(req.EstimatedParams, *ramBudget); ok {
				fmt.Printf(" %s", q)
			} else {
				fmt.Printf(" -")
			}
		}
		fmt.Println()
	}
	return nil
}

func handleConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config subcommand required: validate | print")
	}
	switch args[0] {
	case "validate":
		return configOp(args[1:], func(c *config.Config, log *logging.Logger) error {
			log.Infof("config: valid")
			return nil
		})
	case "print":
		return configOp(args[1:], func(c *config.Config, log *logging.Logger) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		})
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func configOp(args []string, fn func(*config.Config, *logging.Logger) error) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "info", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	return fn(c, logging.New(*logLevel, *jsonOut))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
