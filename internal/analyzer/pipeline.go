package analyzer

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/policylens/policylens/internal/policy"
	"github.com/policylens/policylens/internal/segment"
)

var (
	// ErrNoChunks means the input produced nothing to analyze.
	ErrNoChunks = errors.New("no analyzable chunks in policy content")
	// ErrNoSections means every chunk failed enrichment.
	ErrNoSections = errors.New("no sections survived analysis")
)

// ProcessRequest is one document analysis job.
type ProcessRequest struct {
	CompanyName   string
	Title         string
	Content       string
	Version       string
	EffectiveDate *time.Time

	// Zero values fall back to the analyzer's configured segmenter.
	MaxChunkSize int
	OverlapSize  int
}

// Analysis is the complete outcome of one ProcessDocument run.
type Analysis struct {
	ProcessingID   string
	Document       *policy.Document
	Components     []policy.UIComponent
	ProcessingTime time.Duration
}

// ProcessDocument runs the full pipeline: segment, enrich chunks under
// bounded concurrency, aggregate, synthesize components. Individual chunk
// failures drop that section and continue; zero chunks or zero surviving
// sections abort with the sentinel errors. Caller cancellation abandons
// in-flight work and returns no partial document.
func (a *Analyzer) ProcessDocument(ctx context.Context, req ProcessRequest) (*Analysis, error) {
	start := time.Now()
	processingID := uuid.NewString()
	log := a.log.With("processing_id", processingID, "company", req.CompanyName)

	segCfg := a.cfg.Segmenter
	if req.MaxChunkSize > 0 {
		segCfg.MaxChunkSize = req.MaxChunkSize
	}
	if req.OverlapSize > 0 {
		segCfg.OverlapSize = req.OverlapSize
	}

	chunks := segment.Split(req.Content, segCfg)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	log.Info("segmented policy", "chunks", len(chunks))

	type chunkResult struct {
		section policy.Section
		err     error
		idx     int
	}
	results := make(chan chunkResult, len(chunks))
	sem := make(chan struct{}, a.cfg.MaxConcurrentChunks)

	for i, chunk := range chunks {
		sem <- struct{}{}
		go func(i int, chunk policy.Chunk) {
			defer func() { <-sem }()
			section, err := a.EnrichChunk(ctx, chunk)
			results <- chunkResult{section: section, err: err, idx: i}
		}(i, chunk)
	}

	sections := make([]policy.Section, 0, len(chunks))
	for range chunks {
		r := <-results
		if r.err != nil {
			log.Warn("chunk enrichment failed", "chunk", r.idx, "error", r.err)
			continue
		}
		sections = append(sections, r.section)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	// Workers finish in arbitrary order; restore document order before
	// aggregation.
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Position < sections[j].Position
	})

	doc := &policy.Document{
		ID:               processingID,
		CompanyName:      req.CompanyName,
		Title:            req.Title,
		Version:          req.Version,
		EffectiveDate:    req.EffectiveDate,
		ProcessingStatus: "completed",
		CreatedAt:        time.Now().UTC(),
	}
	aggregate(doc, sections)

	ranked := rankSections(sections)
	components := buildComponents(ranked)
	doc.Sections = ranked

	elapsed := time.Since(start)
	log.Info("analysis complete",
		"sections", len(sections),
		"components", len(components),
		"risk", doc.OverallRiskLevel,
		"duration", elapsed)

	return &Analysis{
		ProcessingID:   processingID,
		Document:       doc,
		Components:     components,
		ProcessingTime: elapsed,
	}, nil
}
