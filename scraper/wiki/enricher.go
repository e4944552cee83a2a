package wiki

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aoe2-units/config"
	"aoe2-units/models"
	"aoe2-units/scraper"
	"aoe2-units/utils"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// tableSelector matches tables whose class attribute is exactly "wikitable",
// the info box that carries the strong/weak rows on a unit page.
const tableSelector = `table[class="wikitable"]`

const disambiguationSuffix = "_(Age_of_Empires_II)"

// UnitError ties an enrichment failure to the unit it happened on
type UnitError struct {
	Key string
	Err error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unit %s: %v", e.Key, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// EnrichReport summarizes one EnrichAll pass
type EnrichReport struct {
	Processed int
	Skipped   int
	Resolved  int
	Failures  []*UnitError
}

// Err joins every per-unit failure, or returns nil
func (r *EnrichReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Enricher backfills strong/weak labels from the fandom wiki
type Enricher struct {
	baseURL string
	fetcher scraper.Fetcher
	logger  *utils.Logger
	probed  *utils.Tracker
}

// NewEnricher creates a new Enricher
func NewEnricher(cfg *config.Config, fetcher scraper.Fetcher, logger *utils.Logger) *Enricher {
	return &Enricher{
		baseURL: strings.TrimRight(cfg.WikiURL, "/"),
		fetcher: fetcher,
		logger:  logger,
		probed:  utils.NewTracker(),
	}
}

// CandidateURLs lists the wiki pages that may describe the named unit, most likely first
func (e *Enricher) CandidateURLs(name string) []string {
	base := e.baseURL + "/" + strings.ReplaceAll(name, " ", "_")
	return []string{base, base + disambiguationSuffix}
}

// ResolveReference returns the first candidate page that has a wikitable.
// ok is false when no candidate matches.
func (e *Enricher) ResolveReference(ctx context.Context, unit *models.Unit) (string, bool, error) {
	for _, url := range e.CandidateURLs(unit.Name) {
		valid, err := e.isUnitPage(ctx, url)
		if err != nil {
			return "", false, err
		}
		if valid {
			return url, true, nil
		}
	}
	return "", false, nil
}

func (e *Enricher) isUnitPage(ctx context.Context, url string) (bool, error) {
	e.probed.Add(url)

	doc, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		var statusErr *scraper.StatusError
		if errors.As(err, &statusErr) {
			e.logger.Debug("  %s: status %d", url, statusErr.StatusCode)
			return false, nil
		}
		return false, err
	}
	return doc.Find(tableSelector).Length() > 0, nil
}

// NeedsEnrichment reports whether any of the named label attributes is unset
// or empty. Names that are not label attributes count as missing.
func NeedsEnrichment(unit *models.Unit, keys ...string) bool {
	for _, key := range keys {
		labels, ok := unit.Labels(key)
		if !ok || labels.State() != models.LabelsPopulated {
			return true
		}
	}
	return false
}

// FetchDetails fills strong_against and weak_against from the unit's wiki
// page. Both are written together, even when empty, or not at all.
func (e *Enricher) FetchDetails(ctx context.Context, unit *models.Unit) error {
	if !NeedsEnrichment(unit, models.FieldStrongAgainst, models.FieldWeakAgainst) {
		return nil
	}
	if unit.WikiURL == nil {
		return errors.New("no wiki url")
	}

	doc, err := e.fetcher.Fetch(ctx, *unit.WikiURL)
	if err != nil {
		return err
	}

	strong, weak := ExtractMatchups(doc)
	unit.StrongAgainst = strong
	unit.WeakAgainst = weak
	return nil
}

// ExtractMatchups reads the strong/weak rows (2nd and 3rd) of the first wikitable
func ExtractMatchups(doc *goquery.Document) (strong, weak models.Labels) {
	rows := ownRows(doc.Find(tableSelector).First())
	strong = models.NewLabels(linksOrText(matchupCell(rows, 1))...)
	weak = models.NewLabels(linksOrText(matchupCell(rows, 2))...)
	return strong, weak
}

// ownRows returns the rows of table itself, leaving out rows of tables
// nested in its cells.
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tbody, thead, tfoot").ChildrenFiltered("tr").
		AddSelection(table.ChildrenFiltered("tr"))
}

func matchupCell(rows *goquery.Selection, row int) *goquery.Selection {
	return rows.Eq(row).ChildrenFiltered("td").Eq(1)
}

// linksOrText returns the text of the anchors directly inside the cell, or
// its own text nodes if it has no anchors.
func linksOrText(cell *goquery.Selection) []string {
	var labels []string

	anchors := cell.ChildrenFiltered("a")
	if anchors.Length() > 0 {
		anchors.Each(func(_ int, a *goquery.Selection) {
			if text := strings.TrimSpace(a.Text()); text != "" {
				labels = append(labels, text)
			}
		})
		return labels
	}

	for _, n := range cell.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				continue
			}
			if text := strings.TrimSpace(c.Data); text != "" {
				labels = append(labels, text)
			}
		}
	}
	return labels
}

// EnrichAll resolves wiki pages and fetches labels for every unit. A failing
// unit is recorded and the rest carry on.
func (e *Enricher) EnrichAll(ctx context.Context, units []*models.Unit) *EnrichReport {
	report := &EnrichReport{}

	for _, unit := range units {
		if ctx.Err() != nil {
			report.Failures = append(report.Failures, &UnitError{Key: unit.Key, Err: ctx.Err()})
			continue
		}

		if !NeedsEnrichment(unit, models.FieldStrongAgainst, models.FieldWeakAgainst) {
			e.logger.Debug("Skipping %s, labels already set", unit.Name)
			report.Skipped++
			continue
		}

		if unit.WikiURL == nil {
			url, ok, err := e.ResolveReference(ctx, unit)
			if err != nil {
				e.logger.Error("Resolving wiki page for %s failed: %v", unit.Name, err)
				report.Failures = append(report.Failures, &UnitError{Key: unit.Key, Err: err})
				continue
			}
			if ok {
				unit.WikiURL = &url
				report.Resolved++
			}
		}

		if unit.WikiURL == nil {
			e.logger.Info("Skipping %s", unit.Name)
			report.Skipped++
			continue
		}

		e.logger.Info("Processing %s", unit.Name)
		if err := e.FetchDetails(ctx, unit); err != nil {
			e.logger.Error("Fetching details for %s failed: %v", unit.Name, err)
			report.Failures = append(report.Failures, &UnitError{Key: unit.Key, Err: err})
			continue
		}
		report.Processed++
	}

	e.logger.Info("Enrichment done: %d processed, %d skipped, %d new wiki pages, %d failed (%d pages probed)",
		report.Processed, report.Skipped, report.Resolved, len(report.Failures), e.probed.Count())
	return report
}
