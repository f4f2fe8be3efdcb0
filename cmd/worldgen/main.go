// Command worldgen synthesizes a toroidal world and optionally archives,
// exports or serves it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/talgya/toroid/internal/api"
	"github.com/talgya/toroid/internal/atlas"
	"github.com/talgya/toroid/internal/compose"
	"github.com/talgya/toroid/internal/export"
	"github.com/talgya/toroid/internal/persistence"
	"github.com/talgya/toroid/internal/world"
)

func main() {
	var (
		configPath  = flag.String("config", "", "TOML file overlaid on the default config")
		seed        = flag.String("seed", "", "world seed (random when empty and not set in -config)")
		rows        = flag.Int("rows", 0, "grid rows; rescales size-dependent defaults")
		cols        = flag.Int("cols", 0, "grid columns; rescales size-dependent defaults")
		sites       = flag.Int("sites", -1, "placeholder sites to place")
		rivers      = flag.Int("rivers", -1, "rivers to carve")
		roads       = flag.Int("roads", -1, "roads to build")
		composition = flag.String("composition", "", "composition JSON to use instead of the procedural composer")
		dbPath      = flag.String("db", "", "SQLite run archive to append to")
		geoPath     = flag.String("geojson", "", "write a GeoJSON export here")
		port        = flag.Int("serve", 0, "serve the world over HTTP on this port")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// ── Config: defaults, then file, then flags ───────────────────────
	cfg := world.DefaultConfig()
	if *rows > 0 || *cols > 0 {
		r, c := cfg.Rows, cfg.Cols
		if *rows > 0 {
			r = *rows
		}
		if *cols > 0 {
			c = *cols
		}
		cfg = world.ScaledConfig(r, c, cfg.Seed)
	}
	seedFromFile := false
	if *configPath != "" {
		before := cfg.Seed
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			slog.Error("failed to read config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		seedFromFile = cfg.Seed != before
	}
	switch {
	case *seed != "":
		cfg.Seed = *seed
	case !seedFromFile:
		cfg.Seed = world.RandomSeed()
	}
	if *sites >= 0 {
		cfg.Sites.Count = *sites
	}
	if *rivers >= 0 {
		cfg.Rivers.Count = *rivers
	}
	if *roads >= 0 {
		cfg.Roads.Count = *roads
	}

	var composer compose.Composer
	if *composition != "" {
		composer = compose.FileComposer{Path: *composition}
	}

	// ── Generate ──────────────────────────────────────────────────────
	start := time.Now()
	w, err := atlas.Generate(context.Background(), cfg, composer)
	if err != nil {
		slog.Error("generation failed", "seed", cfg.Seed, "error", err)
		os.Exit(1)
	}
	if err := w.Verify(); err != nil {
		slog.Warn("world failed verification", "error", err)
	}
	logSummary(w, time.Since(start))

	// ── Archive ───────────────────────────────────────────────────────
	var db *persistence.DB
	if *dbPath != "" {
		if dir := filepath.Dir(*dbPath); dir != "." {
			os.MkdirAll(dir, 0755)
		}
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		id, err := db.SaveRun(w)
		if err != nil {
			slog.Error("failed to archive run", "error", err)
			os.Exit(1)
		}
		size := "unknown"
		if fi, err := os.Stat(*dbPath); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		slog.Info("run archived", "run", id, "path", *dbPath, "size", size)
	}

	// ── Export ────────────────────────────────────────────────────────
	if *geoPath != "" {
		data, err := export.GeoJSON(w)
		if err != nil {
			slog.Error("geojson export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*geoPath, data, 0644); err != nil {
			slog.Error("failed to write geojson", "error", err)
			os.Exit(1)
		}
		slog.Info("geojson written", "path", *geoPath, "size", humanize.Bytes(uint64(len(data))))
	}

	// ── Serve ─────────────────────────────────────────────────────────
	if *port == 0 {
		return
	}
	server := api.NewServer(w, *port)
	server.Composer = composer
	server.DB = db
	server.AdminKey = os.Getenv("TOROID_ADMIN_KEY")
	if server.AdminKey == "" {
		slog.Warn("TOROID_ADMIN_KEY not set, admin endpoints disabled")
	}
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	server.Close()
}

func logSummary(w *atlas.World, took time.Duration) {
	s := w.Stats()
	slog.Info("world generated",
		"seed", s.Seed,
		"grid", fmt.Sprintf("%d×%d", s.Rows, s.Cols),
		"cells", humanize.Comma(int64(s.Rows*s.Cols)),
		"took", took.Round(time.Millisecond),
	)
	for _, alt := range world.AltitudeBands {
		slog.Info("altitude", "band", alt.String(), "count", humanize.Comma(int64(s.Altitudes[alt.String()])))
	}
	slog.Info("layers",
		"land", humanize.Comma(int64(s.Land)),
		"beach", humanize.Comma(int64(s.Beach)),
		"snow", humanize.Comma(int64(s.Snow)),
		"biomes", s.Biomes,
		"unassigned", humanize.Comma(int64(s.Unassigned)),
		"sites", s.Placeholders,
		"features", s.Features,
		"rivers", s.Rivers,
		"river_cells", humanize.Comma(int64(s.RiverCells)),
		"roads", s.Roads,
	)
	if n := len(w.Reports.Skipped); n > 0 {
		slog.Warn("composition named unknown placeholders", "skipped", n)
	}
}
