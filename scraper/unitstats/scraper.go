package unitstats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aoe2-units/config"
	"aoe2-units/models"
	"aoe2-units/scraper"
	"aoe2-units/services"
	"aoe2-units/utils"

	"github.com/PuerkitoBio/goquery"
)

// RowError reports a table row that does not have one cell per schema field
type RowError struct {
	Row   int
	Cells int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: expected %d cells, got %d", e.Row, len(models.Schema), e.Cells)
}

// Scraper reads the unit statistics table
type Scraper struct {
	url     string
	fetcher scraper.Fetcher
	cleaner *services.DataCleaner
	logger  *utils.Logger
}

// NewScraper creates a new stats table Scraper
func NewScraper(cfg *config.Config, fetcher scraper.Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{
		url:     cfg.StatsURL,
		fetcher: fetcher,
		cleaner: services.NewDataCleaner(logger),
		logger:  logger,
	}
}

// Scrape fetches the stats page and returns one raw row per table row
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawUnit, error) {
	s.logger.Info("Fetching unit statistics from %s", s.url)

	doc, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("stats page fetch failed: %w", err)
	}

	raw, err := ParseTable(doc)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stats table: %d rows", len(raw))
	return raw, nil
}

// FetchRemote scrapes the stats table and converts every row into a typed unit
func (s *Scraper) FetchRemote(ctx context.Context) ([]*models.RawUnit, []*models.Unit, error) {
	raw, err := s.Scrape(ctx)
	if err != nil {
		return nil, nil, err
	}
	units, err := s.cleaner.Clean(raw)
	if err != nil {
		return raw, nil, err
	}
	return raw, units, nil
}

// ParseTable extracts the rows of every tbody in the document. Rows without
// td cells (header rows) are ignored; short rows are errors.
func ParseTable(doc *goquery.Document) ([]*models.RawUnit, error) {
	var (
		raw  []*models.RawUnit
		errs []error
	)

	doc.Find("tbody > tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}
		row := i + 1
		if cells.Length() < len(models.Schema) {
			errs = append(errs, &RowError{Row: row, Cells: cells.Length()})
			return
		}

		unit := &models.RawUnit{Row: row, Cells: make([]string, len(models.Schema))}
		cells.Slice(0, len(models.Schema)).Each(func(j int, td *goquery.Selection) {
			unit.Cells[j] = strings.TrimSpace(td.Text())
		})
		raw = append(raw, unit)
	})

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return raw, nil
}
