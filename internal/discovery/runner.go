package discovery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// Runner drives a discovery batch: one Places text search per query,
// per-result detail enrichment and scoring, then ingestion.
type Runner struct {
	places   places.Client
	ingest   Ingestor
	assessor *WebsiteAssessor
	cfg      *config.DiscoveryConfig
}

// NewRunner creates a Runner. A nil places client means the API credential is
// not configured; Run then fails the whole batch with a single error.
func NewRunner(p places.Client, ingest Ingestor, cfg *config.DiscoveryConfig) *Runner {
	return &Runner{
		places:   p,
		ingest:   ingest,
		assessor: NewWebsiteAssessor(cfg.WebsiteTimeout()),
		cfg:      cfg,
	}
}

// Run executes the batch for the given queries. Queries are processed
// strictly sequentially with an inter-query delay to respect API rate
// limits. Every failure mode short of a missing credential degrades to a
// recorded error string; Run always returns a complete report and never
// panics or propagates an error. Cancelling ctx stops the batch between
// units of work and returns the partial report.
func (r *Runner) Run(ctx context.Context, queries []string, location string) *Report {
	log := zap.L().With(zap.String("component", "discovery"))
	report := &Report{}

	if location == "" {
		location = r.cfg.DefaultLocation
	}

	if r.places == nil {
		report.Errors = append(report.Errors, "Google Places API key not configured")
		return report
	}

	for i, query := range queries {
		if ctx.Err() != nil {
			log.Warn("discovery cancelled", zap.Int("queries_done", i))
			break
		}

		qr := r.runQuery(ctx, query, location)

		// Ingest candidates; duplicates and validation failures are recorded
		// per candidate and never abort the batch.
		for _, c := range qr.Candidates {
			if err := r.ingest.Create(ctx, c); err != nil {
				qr.Errors = append(qr.Errors, fmt.Sprintf("failed to create lead %s: %v", c.BusinessName, err))
				continue
			}
			report.TotalCreated++
		}

		report.TotalFound += len(qr.Candidates)
		report.Results = append(report.Results, qr)
		report.Errors = append(report.Errors, qr.Errors...)

		log.Info("query processed",
			zap.String("query", query),
			zap.Int("found", len(qr.Candidates)),
			zap.Int("errors", len(qr.Errors)),
		)

		// Throttle between queries, but not after the last one.
		if i < len(queries)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(r.cfg.QueryDelay()):
			}
		}
	}

	log.Info("discovery batch complete",
		zap.Int("total_found", report.TotalFound),
		zap.Int("total_created", report.TotalCreated),
		zap.Int("errors", len(report.Errors)),
	)

	return report
}

// runQuery searches one query and assembles candidates from its results.
// A search failure yields zero candidates and one error string.
func (r *Runner) runQuery(ctx context.Context, query, location string) QueryResult {
	qr := QueryResult{Query: query, Source: SourceGooglePlaces}

	results, err := r.places.TextSearch(ctx, query, location)
	if err != nil {
		qr.Errors = append(qr.Errors, err.Error())
		return qr
	}

	if r.cfg.ParallelDetails {
		qr.Candidates = r.buildCandidatesParallel(ctx, results)
	} else {
		for _, p := range results {
			qr.Candidates = append(qr.Candidates, r.buildCandidate(ctx, p))
		}
	}

	return qr
}

// buildCandidatesParallel enriches one query's results concurrently. Result
// independence makes this safe; the shared client rate limiter keeps API
// pressure bounded. Output order matches input order.
func (r *Runner) buildCandidatesParallel(ctx context.Context, results []places.Place) []Candidate {
	candidates := make([]Candidate, len(results))

	g, gctx := errgroup.WithContext(ctx)
	workers := r.cfg.DetailWorkers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)

	for i, p := range results {
		g.Go(func() error {
			candidates[i] = r.buildCandidate(gctx, p)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return candidates
}

// buildCandidate turns one search result into a scored candidate lead.
// Detail and website fetch failures degrade to absent fields and the worst
// website score; they do not produce user-visible errors.
func (r *Runner) buildCandidate(ctx context.Context, p places.Place) Candidate {
	c := Candidate{
		BusinessName: p.Name,
		Address:      p.FormattedAddress,
		City:         ExtractCity(p.FormattedAddress),
		BusinessType: ClassifyTypes(p.Types),
		Source:       SourceGooglePlaces,
		Status:       StatusNew,
		Metadata:     map[string]any{"place_id": p.PlaceID},
	}
	if p.Rating > 0 {
		c.Metadata["rating"] = p.Rating
	}
	if p.Geometry != nil {
		c.Metadata["location"] = map[string]float64{
			"lat": p.Geometry.Location.Lat,
			"lng": p.Geometry.Location.Lng,
		}
	}

	details, err := r.places.Details(ctx, p.PlaceID)
	if err != nil {
		zap.L().Debug("place details unavailable",
			zap.String("place_id", p.PlaceID),
			zap.Error(err),
		)
	} else if details != nil {
		c.WebsiteURL = details.Website
		c.Phone = details.FormattedPhoneNumber
	}

	if c.WebsiteURL != "" {
		c.WebsiteScore = r.assessor.Assess(ctx, c.WebsiteURL)
	} else {
		c.WebsiteScore = 0 // no website
	}

	ws := c.WebsiteScore
	c.OpportunityScore = OpportunityScore(ScoreInput{
		WebsiteURL:   c.WebsiteURL,
		WebsiteScore: &ws,
		City:         c.City,
		BusinessType: c.BusinessType,
	}, r.cfg.TargetLocations, r.cfg.HighValueTypes)
	c.Metadata["lead_score"] = c.OpportunityScore

	return c
}
