// Package atlas ties the generation stages together and holds everything a
// generated world is made of.
package atlas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/compose"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/hydro"
	"github.com/talgya/toroid/internal/roads"
	"github.com/talgya/toroid/internal/sites"
	"github.com/talgya/toroid/internal/world"
)

// ErrStageOrder is returned when a stage would invalidate a later one that
// already ran.
var ErrStageOrder = errors.New("stage out of order")

// World holds the complete state of one generation run. Stages fill it in
// data-flow order; each keeps its result even if a later stage falls short.
type World struct {
	Config  world.Config
	Terrain *world.Terrain

	Biomes       *biome.Assignment // Nil until biomes are assigned
	Placeholders []sites.Placeholder
	Features     *feature.Index
	Rivers       []feature.Path
	Roads        []feature.Path
	Politics     compose.Politics

	Reports Reports
}

// Reports collects the per-stage counters.
type Reports struct {
	Sites   sites.Report `json:"sites"`
	Biomes  biome.Report `json:"biomes"`
	Rivers  hydro.Report `json:"rivers"`
	Roads   roads.Report `json:"roads"`
	Skipped []string     `json:"skipped,omitempty"` // Composition features with unknown placeholders
}

// New validates cfg and builds the terrain and climate layers.
func New(cfg world.Config) (*World, error) {
	ter, err := world.Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}
	slog.Info("terrain generated",
		"rows", cfg.Rows, "cols", cfg.Cols, "seed", cfg.Seed,
		"land", ter.LandCount(), "cells", ter.Grid.Size())
	return &World{
		Config:   cfg,
		Terrain:  ter,
		Features: feature.NewIndex(ter.Grid),
	}, nil
}

// PlaceSites reserves placeholder footprints away from any feature already
// placed, replacing earlier placeholders.
func (w *World) PlaceSites() []sites.Placeholder {
	p := sites.NewPlacer(w.Config.Sites, w.Config.Seed, w.Terrain, w.Biomes, w.Features,
		world.NewRand(w.Config.Seed, world.SaltSites))
	w.Placeholders, w.Reports.Sites = p.Place()
	return w.Placeholders
}

// AssignBiomes partitions the land among defs. It must run before rivers are
// carved, since carving writes into the biome grid.
func (w *World) AssignBiomes(defs []biome.Biome) (biome.Report, error) {
	if len(w.Rivers) > 0 {
		return biome.Report{}, fmt.Errorf("%w: biomes assigned after rivers", ErrStageOrder)
	}
	a, rep, err := biome.Assign(w.Config.Biomes, w.Terrain, defs, world.NewRand(w.Config.Seed, world.SaltBiomes))
	if err != nil {
		return rep, fmt.Errorf("assign biomes: %w", err)
	}
	w.Biomes, w.Reports.Biomes = a, rep
	return rep, nil
}

// AddFeatures places footprint features. A feature overlapping one already
// placed is rejected; the rest are still added and every rejection is
// reported in the returned error. Features without a biome take the biome
// at their anchor.
func (w *World) AddFeatures(fs []feature.Feature) error {
	var errs []error
	for _, f := range fs {
		if f.BiomeID == "" && w.Biomes != nil {
			f.BiomeID = w.Biomes.Grid[w.Terrain.Grid.Index(f.Anchor)]
		}
		if err := w.Features.Add(f); err != nil {
			errs = append(errs, err)
		}
	}
	slog.Info("features added", "added", len(fs)-len(errs), "rejected", len(errs))
	return errors.Join(errs...)
}

// CarveRivers runs the river stage. Without a biome assignment the land is
// left unassigned and only the ocean and rivers are recorded.
func (w *World) CarveRivers() hydro.Report {
	if w.Biomes == nil {
		w.Biomes = biome.OceanOnly(w.Terrain)
	}
	paths, rep := hydro.Carve(w.Config, w.Terrain, w.Biomes, world.NewRand(w.Config.Seed, world.SaltRivers))
	w.Rivers = append(w.Rivers, paths...)
	w.Reports.Rivers = rep
	return rep
}

// BuildRoads connects settlements. Rivers should be carved first so that
// crossings are priced.
func (w *World) BuildRoads() roads.Report {
	paths, rep := roads.Build(w.Config, w.Terrain, w.Biomes, w.Features)
	w.Roads = append(w.Roads, paths...)
	w.Reports.Roads = rep
	return rep
}

// Generate runs every stage in order. A nil composer uses the procedural one.
func Generate(ctx context.Context, cfg world.Config, c compose.Composer) (*World, error) {
	if c == nil {
		c = compose.NewProcedural()
	}
	w, err := New(cfg)
	if err != nil {
		return nil, err
	}

	w.PlaceSites()
	comp, err := c.Compose(ctx, compose.Request{Seed: cfg.Seed, Placeholders: w.Placeholders})
	if err != nil {
		return w, fmt.Errorf("compose world: %w", err)
	}
	res, err := comp.Resolve(cfg.Seed, w.Placeholders)
	if err != nil {
		return w, fmt.Errorf("resolve composition: %w", err)
	}
	w.Politics = res.Politics
	w.Reports.Skipped = res.Skipped

	if _, err := w.AssignBiomes(res.Biomes); err != nil {
		return w, err
	}
	if err := w.AddFeatures(res.Features); err != nil {
		return w, fmt.Errorf("add features: %w", err)
	}
	w.CarveRivers()
	w.BuildRoads()
	return w, nil
}
