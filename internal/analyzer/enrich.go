// Package analyzer turns segmented policy text into enriched sections,
// aggregates them into a document, and synthesizes ranked UI components.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/policylens/policylens/internal/decode"
	"github.com/policylens/policylens/internal/llm"
	"github.com/policylens/policylens/internal/policy"
	"github.com/policylens/policylens/internal/segment"
)

// Config selects models and bounds for analysis.
type Config struct {
	PrimaryModel        string
	SecondaryModel      string
	MaxConcurrentChunks int
	Segmenter           segment.Config
}

// Analyzer runs the per-chunk enrichment flow and the document pipeline.
type Analyzer struct {
	llm     llm.Completer
	decoder *decode.Decoder
	log     *slog.Logger
	cfg     Config
}

func New(completer llm.Completer, decoder *decode.Decoder, log *slog.Logger, cfg Config) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxConcurrentChunks <= 0 {
		cfg.MaxConcurrentChunks = 4
	}
	if cfg.Segmenter.MaxChunkSize <= 0 {
		cfg.Segmenter = segment.DefaultConfig()
	}
	return &Analyzer{llm: completer, decoder: decoder, log: log, cfg: cfg}
}

// EnrichChunk runs the full analysis flow for one chunk. A transport-level
// failure of the entity, impact, summary, or importance call is fatal for
// the chunk; styling and quiz failures of any kind are absorbed.
func (a *Analyzer) EnrichChunk(ctx context.Context, chunk policy.Chunk) (policy.Section, error) {
	log := a.log.With("chunk_id", chunk.ID, "position", chunk.Position)

	var (
		entitiesRaw string
		impactRaw   string
		summary     string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := a.llm.Complete(gctx, llm.Request{
			Prompt:      buildEntitiesPrompt(chunk.Text),
			System:      SystemPrompt,
			Model:       a.cfg.SecondaryModel,
			Temperature: 0.1,
			MaxTokens:   800,
			JSON:        true,
		})
		if err != nil {
			return fmt.Errorf("entities: %w", err)
		}
		entitiesRaw = resp.Content
		return nil
	})
	g.Go(func() error {
		resp, err := a.llm.Complete(gctx, llm.Request{
			Prompt:      buildImpactPrompt(chunk.Text),
			System:      SystemPrompt,
			Model:       a.cfg.PrimaryModel,
			Temperature: 0.1,
			MaxTokens:   600,
			JSON:        true,
		})
		if err != nil {
			return fmt.Errorf("impact: %w", err)
		}
		impactRaw = resp.Content
		return nil
	})
	g.Go(func() error {
		resp, err := a.llm.Complete(gctx, llm.Request{
			Prompt:      buildSummaryPrompt(chunk.Text),
			System:      SystemPrompt,
			Model:       a.cfg.PrimaryModel,
			Temperature: 0.2,
			MaxTokens:   400,
		})
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		summary = strings.TrimSpace(resp.Content)
		return nil
	})
	if err := g.Wait(); err != nil {
		return policy.Section{}, fmt.Errorf("chunk %s: %w", chunk.ID, err)
	}

	entities := a.decoder.Entities(entitiesRaw)
	impact := a.decoder.Impact(impactRaw)

	importance, err := a.importanceScore(ctx, chunk.Text, impact)
	if err != nil {
		return policy.Section{}, fmt.Errorf("chunk %s: %w", chunk.ID, err)
	}

	styledContent := a.styleText(ctx, chunk.Text, impact.SensitivityScore, log)
	var styledSummary *policy.StyledContent
	if summary != "" {
		styledSummary = a.styleText(ctx, summary, impact.SensitivityScore, log)
	}

	title := chunk.Title
	if title == "" {
		title = fmt.Sprintf("Section %d", chunk.Position+1)
	}

	section := policy.Section{
		ID:            chunk.ID,
		Title:         title,
		OriginalText:  chunk.Text,
		Summary:       summary,
		StyledContent: styledContent,
		StyledSummary: styledSummary,
		Impact:        impact,
		Entities:      entities,

		ImportanceScore: importance,
		WordCount:       len(strings.Fields(chunk.Text)),
		Position:        chunk.Position,
		CreatedAt:       time.Now().UTC(),
	}
	section.ReadingTime = readingSeconds(section.WordCount)
	section.DataTypes, section.UserRights = collectClassifications(entities, impact)

	// Quiz last: the pre-check decides whether to spend the call, the
	// outcome decides the flag.
	if shouldGenerateQuiz(impact) {
		section.Quiz = a.generateQuiz(ctx, section, log)
	}
	section.RequiresQuiz = section.Quiz != nil

	return section, nil
}

// importanceScore asks the primary model to rank the section. Transport
// failure propagates; an unparseable body decodes to 0.5.
func (a *Analyzer) importanceScore(ctx context.Context, content string, impact policy.ImpactAssessment) (float64, error) {
	resp, err := a.llm.Complete(ctx, llm.Request{
		Prompt:      buildImportancePrompt(content, string(impact.RiskLevel), impact.UserControl),
		System:      SystemPrompt,
		Model:       a.cfg.PrimaryModel,
		Temperature: 0.1,
		MaxTokens:   50,
	})
	if err != nil {
		return 0, fmt.Errorf("importance: %w", err)
	}
	return a.decoder.Importance(resp.Content), nil
}

// styleText requests sensitivity styling for a body of text. Never fails:
// transport errors produce nil, decode problems an unstyled wrapper.
func (a *Analyzer) styleText(ctx context.Context, text string, sensitivity float64, log *slog.Logger) *policy.StyledContent {
	resp, err := a.llm.Complete(ctx, llm.Request{
		Prompt:      buildSegmentsPrompt(text, sensitivity),
		System:      SystemPrompt,
		Model:       a.cfg.PrimaryModel,
		Temperature: 0.1,
		MaxTokens:   1500,
		JSON:        true,
	})
	if err != nil {
		log.Warn("styling call failed", "error", err)
		return nil
	}
	return a.decoder.StyledText(resp.Content, text, sensitivity)
}

// generateQuiz attempts one quiz generation. No retry on failure; the
// section simply ships without a quiz.
func (a *Analyzer) generateQuiz(ctx context.Context, section policy.Section, log *slog.Logger) *policy.Quiz {
	resp, err := a.llm.Complete(ctx, llm.Request{
		Prompt:      buildQuizPrompt(section.Title, section.OriginalText, section.Impact.SensitivityScore),
		System:      SystemPrompt,
		Model:       a.cfg.PrimaryModel,
		Temperature: 0.3,
		MaxTokens:   2000,
		JSON:        true,
	})
	if err != nil {
		log.Warn("quiz call failed", "error", err)
		return nil
	}
	return a.decoder.Quiz(resp.Content, section.ID, section.Title, section.OriginalText, section.Impact.SensitivityScore)
}

// readingSeconds estimates reading time at roughly 180 words per minute.
func readingSeconds(words int) int {
	secs := words / 3
	if secs < 1 {
		return 1
	}
	return secs
}

// collectClassifications unions data types and user rights from extracted
// entities and the impact's actionable rights, preserving first-seen order.
func collectClassifications(entities []policy.ExtractedEntity, impact policy.ImpactAssessment) ([]policy.DataType, []policy.UserRight) {
	dataTypes := make([]policy.DataType, 0, 4)
	seenTypes := make(map[policy.DataType]bool)
	rights := make([]policy.UserRight, 0, 4)
	seenRights := make(map[policy.UserRight]bool)

	addRight := func(r policy.UserRight) {
		if !seenRights[r] {
			seenRights[r] = true
			rights = append(rights, r)
		}
	}

	for _, e := range entities {
		switch e.Type {
		case "data_type":
			if dt, ok := policy.ParseDataType(strings.ToLower(e.Value)); ok && !seenTypes[dt] {
				seenTypes[dt] = true
				dataTypes = append(dataTypes, dt)
			}
		case "user_right":
			for _, r := range decode.NormalizeRights([]string{e.Value}) {
				addRight(r)
			}
		}
	}
	for _, r := range impact.ActionableRights {
		addRight(r)
	}
	return dataTypes, rights
}

// shouldGenerateQuiz is the pre-check deciding whether a quiz generation
// call is worth making for a section's impact profile.
func shouldGenerateQuiz(impact policy.ImpactAssessment) bool {
	if impact.SensitivityScore >= 8.0 ||
		impact.PrivacyImpactScore >= 8.0 ||
		impact.DataSharingRisk >= 8.0 {
		return true
	}
	return impact.SensitivityScore >= 7.0 && impact.PrivacyImpactScore >= 7.0
}
