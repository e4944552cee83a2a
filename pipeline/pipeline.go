package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"aoe2-units/config"
	"aoe2-units/models"
	"aoe2-units/scraper"
	"aoe2-units/scraper/unitstats"
	"aoe2-units/scraper/wiki"
	"aoe2-units/services"
	"aoe2-units/storage"
	"aoe2-units/utils"
)

// Options tune a single run
type Options struct {
	// Refresh scrapes the stats table even if the units file exists
	Refresh bool
	// SkipEnrich leaves wiki labels untouched
	SkipEnrich bool
}

// Pipeline runs load -> enrich -> merge -> save for one units file
type Pipeline struct {
	cfg      *config.Config
	logger   *utils.Logger
	store    *storage.UnitStore
	stats    *unitstats.Scraper
	enricher *wiki.Enricher
	raw      storage.RawStorage
	sink     storage.UnitSink
}

// New wires the pipeline stages around one fetcher
func New(cfg *config.Config, fetcher scraper.Fetcher, logger *utils.Logger) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		store:    storage.NewUnitStore(logger),
		stats:    unitstats.NewScraper(cfg, fetcher, logger),
		enricher: wiki.NewEnricher(cfg, fetcher, logger),
	}
	if cfg.CSVFilePath != "" {
		p.raw = storage.NewCSVWriter(cfg.CSVFilePath, logger)
	}
	return p
}

// SetSink adds a store for the final units, e.g. a SQLWriter
func (p *Pipeline) SetSink(sink storage.UnitSink) {
	p.sink = sink
}

// Store exposes the unit collection
func (p *Pipeline) Store() *storage.UnitStore {
	return p.store
}

// Run executes the pipeline. The units file is saved even when some units
// failed to enrich or an elite unit has no base; those errors are returned
// after saving.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*models.InsightReport, error) {
	if err := p.populate(ctx, opts.Refresh); err != nil {
		return nil, err
	}

	var errs []error
	if !opts.SkipEnrich {
		report := p.enricher.EnrichAll(ctx, p.store.Units())
		if err := report.Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := services.PropagateElite(p.store.Units(), p.store); err != nil {
		p.logger.Error("Elite merge incomplete: %v", err)
		errs = append(errs, err)
	}

	if err := p.store.Save(p.cfg.UnitsFile); err != nil {
		return nil, err
	}

	if p.sink != nil {
		if err := p.sink.SaveUnits(p.store.Units()); err != nil {
			errs = append(errs, fmt.Errorf("database sink: %w", err))
		}
	}

	report := services.NewInsightService(p.logger).Generate(p.store.Units())

	err := errors.Join(errs...)
	if err != nil {
		p.logSummary(errs)
	}
	return report, err
}

// populate loads the units file, or scrapes the stats table when the file is
// missing or a refresh was asked for.
func (p *Pipeline) populate(ctx context.Context, refresh bool) error {
	if !refresh {
		err := p.store.Load(p.cfg.UnitsFile)
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		p.logger.Info("No units file at %s, scraping the stats table", p.cfg.UnitsFile)
	}

	raw, units, err := p.stats.FetchRemote(ctx)
	if raw != nil && p.raw != nil {
		if err := p.raw.SaveRaw(raw); err != nil {
			p.logger.Error("Failed to write raw stats: %v", err)
			// Non-fatal: the JSON file is the primary output
		}
	}
	if err != nil {
		return err
	}

	if refresh {
		p.carryOver(units)
	}
	p.store.Add(units...)
	return nil
}

// carryOver keeps the wiki url and labels of units already in the units file
// so a refresh does not throw away earlier enrichment.
func (p *Pipeline) carryOver(units []*models.Unit) {
	previous := storage.NewUnitStore(utils.NewNopLogger())
	if err := previous.Load(p.cfg.UnitsFile); err != nil {
		return
	}

	kept := 0
	for _, u := range units {
		old, err := previous.Get(u.Key)
		if err != nil {
			continue
		}
		u.WikiURL = old.WikiURL
		u.StrongAgainst = old.StrongAgainst
		u.WeakAgainst = old.WeakAgainst
		kept++
	}
	p.logger.Info("Kept wiki data for %d of %d units from %s", kept, len(units), p.cfg.UnitsFile)
}

func (p *Pipeline) logSummary(errs []error) {
	counts := make(map[services.Code]int)
	for _, err := range errs {
		for _, e := range flatten(err) {
			counts[services.Classify(e)]++
		}
	}
	for code, n := range counts {
		p.logger.Warn("%d failure(s) of kind %s", n, code)
	}
}

// flatten expands errors.Join trees into their leaves
func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
