package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"aoe2-units/config"
	"aoe2-units/models"
	"aoe2-units/scraper"
	"aoe2-units/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const skirmisherPage = `<html><body>
<table class="wikitable">
<tr><th>Skirmisher</th></tr>
<tr><td>Strong vs.</td><td><a href="/wiki/Archer">Archers</a>, <a href="/wiki/Spearman">Spearmen</a></td></tr>
<tr><td>Weak vs.</td><td><a href="/wiki/Knight">Cavalry</a></td></tr>
</table>
</body></html>`

const textOnlyPage = `<html><body>
<table class="wikitable">
<tr><th>Petard</th></tr>
<tr><td>Strong vs.</td><td>Buildings<br>Siege</td></tr>
<tr><td>Weak vs.</td><td>   </td></tr>
</table>
</body></html>`

const nestedPage = `<html><body>
<table class="wikitable">
<tr><th><table><tr><td><img src="knight.png"></td></tr></table></th></tr>
<tr><td>Strong vs.</td><td><a href="/wiki/Archer">Archers</a></td></tr>
<tr><td>Weak vs.</td><td><a href="/wiki/Camel">Cavalry</a></td></tr>
</table>
</body></html>`

const sortablePage = `<html><body><table class="wikitable sortable"><tr><td>x</td></tr></table></body></html>`

func newTestEnricher(t *testing.T, pages map[string]string) (*Enricher, *atomic.Int32) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.WikiURL = srv.URL + "/wiki/"
	cfg.RateLimitDelay = 0
	cfg.MaxRetries = 1
	logger := utils.NewNopLogger()
	return NewEnricher(cfg, scraper.NewHTTPFetcher(cfg, logger), logger), &calls
}

func TestCandidateURLs(t *testing.T) {
	e := NewEnricher(&config.Config{WikiURL: "https://ageofempires.fandom.com/wiki"}, nil, utils.NewNopLogger())
	require.Equal(t, []string{
		"https://ageofempires.fandom.com/wiki/Elite_Skirmisher",
		"https://ageofempires.fandom.com/wiki/Elite_Skirmisher_(Age_of_Empires_II)",
	}, e.CandidateURLs("Elite Skirmisher"))
}

func TestNeedsEnrichment(t *testing.T) {
	keys := []string{models.FieldStrongAgainst, models.FieldWeakAgainst}

	absent := &models.Unit{WeakAgainst: models.NewLabels("Cavalry")}
	require.True(t, NeedsEnrichment(absent, keys...))

	empty := &models.Unit{StrongAgainst: models.NewLabels(), WeakAgainst: models.NewLabels("Cavalry")}
	require.True(t, NeedsEnrichment(empty, keys...))

	var nulled models.Unit
	require.NoError(t, nulled.StrongAgainst.UnmarshalJSON([]byte("null")))
	nulled.WeakAgainst = models.NewLabels("Cavalry")
	require.True(t, NeedsEnrichment(&nulled, keys...))

	full := &models.Unit{StrongAgainst: models.NewLabels("Archers"), WeakAgainst: models.NewLabels("Cavalry")}
	require.False(t, NeedsEnrichment(full, keys...))

	require.True(t, NeedsEnrichment(full, "counters"))
}

func TestExtractMatchups(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(skirmisherPage))
	require.NoError(t, err)
	strong, weak := ExtractMatchups(doc)
	require.Equal(t, []string{"Archers", "Spearmen"}, strong.Values())
	require.Equal(t, []string{"Cavalry"}, weak.Values())

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(textOnlyPage))
	require.NoError(t, err)
	strong, weak = ExtractMatchups(doc)
	require.Equal(t, []string{"Buildings", "Siege"}, strong.Values())
	require.Equal(t, models.LabelsEmpty, weak.State())

	// rows of a table nested in the header do not shift the matchup rows
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(nestedPage))
	require.NoError(t, err)
	strong, weak = ExtractMatchups(doc)
	require.Equal(t, []string{"Archers"}, strong.Values())
	require.Equal(t, []string{"Cavalry"}, weak.Values())
}

func TestResolveReference(t *testing.T) {
	e, _ := newTestEnricher(t, map[string]string{
		"/wiki/Skirmisher_(Age_of_Empires_II)": skirmisherPage,
		"/wiki/Knight":                         sortablePage,
	})

	url, ok, err := e.ResolveReference(context.Background(), &models.Unit{Name: "Skirmisher"})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, strings.HasSuffix(url, "/wiki/Skirmisher_(Age_of_Empires_II)"))

	// class must be exactly "wikitable"
	_, ok, err = e.ResolveReference(context.Background(), &models.Unit{Name: "Knight"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFetchDetails(t *testing.T) {
	e, calls := newTestEnricher(t, map[string]string{"/wiki/Skirmisher": skirmisherPage})
	url := e.CandidateURLs("Skirmisher")[0]

	unit := &models.Unit{Name: "Skirmisher", Key: "skirmisher", WikiURL: &url, StrongAgainst: models.NewLabels()}
	require.NoError(t, e.FetchDetails(context.Background(), unit))
	require.Equal(t, []string{"Archers", "Spearmen"}, unit.StrongAgainst.Values())
	require.Equal(t, []string{"Cavalry"}, unit.WeakAgainst.Values())
	require.Equal(t, int32(1), calls.Load())

	// already populated: nothing is fetched
	require.NoError(t, e.FetchDetails(context.Background(), unit))
	require.Equal(t, int32(1), calls.Load())
}

func TestFetchDetailsWritesNothingOnError(t *testing.T) {
	e, _ := newTestEnricher(t, nil)
	url := e.CandidateURLs("Ghost")[0]

	unit := &models.Unit{Name: "Ghost", Key: "ghost", WikiURL: &url}
	err := e.FetchDetails(context.Background(), unit)
	var statusErr *scraper.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, models.LabelsUnset, unit.StrongAgainst.State())
	require.Equal(t, models.LabelsUnset, unit.WeakAgainst.State())
}

func TestEnrichAll(t *testing.T) {
	e, _ := newTestEnricher(t, map[string]string{
		"/wiki/Skirmisher": skirmisherPage,
		"/wiki/Petard":     textOnlyPage,
	})
	broken := e.CandidateURLs("Broken")[0]

	units := []*models.Unit{
		{Name: "Skirmisher", Key: "skirmisher"},
		{Name: "Broken", Key: "broken", WikiURL: &broken},
		{Name: "Unknown Unit", Key: "unknown_unit"},
		{Name: "Petard", Key: "petard"},
	}

	report := e.EnrichAll(context.Background(), units)
	require.Equal(t, 2, report.Processed)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 2, report.Resolved)
	require.Len(t, report.Failures, 1)
	require.Equal(t, "broken", report.Failures[0].Key)
	require.Error(t, report.Err())

	require.Equal(t, []string{"Archers", "Spearmen"}, units[0].StrongAgainst.Values())
	require.Equal(t, models.LabelsUnset, units[1].StrongAgainst.State())
	require.Nil(t, units[2].WikiURL)
	require.Equal(t, models.LabelsUnset, units[2].StrongAgainst.State())
	require.Equal(t, []string{"Buildings", "Siege"}, units[3].StrongAgainst.Values())
}

func TestEnrichAllSkipsLabelledUnits(t *testing.T) {
	e, calls := newTestEnricher(t, nil)

	units := []*models.Unit{{
		Name:          "Elite Skirmisher",
		Key:           "elite_skirmisher",
		StrongAgainst: models.NewLabels("Archers"),
		WeakAgainst:   models.NewLabels("Cavalry"),
	}}

	report := e.EnrichAll(context.Background(), units)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 0, report.Resolved)
	require.NoError(t, report.Err())
	require.Nil(t, units[0].WikiURL)
	require.Equal(t, int32(0), calls.Load())
}
