package decode

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/policylens/policylens/internal/policy"
)

type segmentPayload struct {
	Text              string     `json:"text"`
	SensitivityScore  *flexFloat `json:"sensitivity_score"`
	ContextType       string     `json:"context_type"`
	KeyTerms          []string   `json:"key_terms"`
	HighlightColor    string     `json:"highlight_color"`
	TextColor         string     `json:"text_color"`
	FontWeight        string     `json:"font_weight"`
	TextEmphasis      *flexFloat `json:"text_emphasis"`
	RequiresAttention *bool      `json:"requires_attention"`
}

type segmentsEnvelope struct {
	Segments           []segmentPayload `json:"segments"`
	OverallSensitivity *flexFloat       `json:"overall_sensitivity"`
}

// unstyled wraps the original text with no segments. Used whenever styling
// cannot be decoded; the section still renders, just without highlighting.
func unstyled(original string, overallSensitivity float64) *policy.StyledContent {
	return &policy.StyledContent{
		OriginalText:       original,
		Segments:           []policy.TextSegment{},
		OverallSensitivity: clamp(overallSensitivity, 0, 10),
		StylingApplied:     false,
	}
}

// StyledText decodes a styling response against the original text.
// Segment offsets are recovered with a moving cursor: exact substring
// match first, case-insensitive retry, then approximated from the cursor
// position when the service paraphrased.
func (d *Decoder) StyledText(raw, original string, overallSensitivity float64) *policy.StyledContent {
	var env segmentsEnvelope
	if err := json.Unmarshal([]byte(StripFences(raw)), &env); err != nil {
		d.fallback("segments", raw)
		return unstyled(original, overallSensitivity)
	}

	overall := clamp(overallSensitivity, 0, 10)
	if env.OverallSensitivity != nil {
		overall = clamp(float64(*env.OverallSensitivity), 0, 10)
	}

	lowerOriginal := strings.ToLower(original)
	cursor := 0
	segments := make([]policy.TextSegment, 0, len(env.Segments))

	for _, p := range env.Segments {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}

		sens := overall
		if p.SensitivityScore != nil {
			sens = clamp(float64(*p.SensitivityScore), 0, 10)
		}

		start, end, _ := locate(original, lowerOriginal, p.Text, cursor)
		cursor = end

		color, weight, emphasis, attention := DeriveStyle(sens)
		if p.TextEmphasis != nil {
			v := int(math.Round(float64(*p.TextEmphasis)))
			if v >= 1 && v <= 5 {
				emphasis = v
			}
		}
		if p.RequiresAttention != nil {
			attention = *p.RequiresAttention
		}

		contextType := strings.ToLower(strings.TrimSpace(p.ContextType))
		if contextType == "" {
			contextType = "general"
		}
		keyTerms := p.KeyTerms
		if keyTerms == nil {
			keyTerms = []string{}
		}

		seg := policy.TextSegment{
			ID:               fmt.Sprintf("seg_%d", len(segments)),
			Text:             p.Text,
			SensitivityScore: sens,
			StartPosition:    start,
			EndPosition:      end,
			HighlightColor:   validOr(p.HighlightColor, highlightColors, color),
			TextColor:        validOr(p.TextColor, textColors, "default"),
			FontWeight:       validOr(p.FontWeight, fontWeights, weight),
			TextEmphasis:     emphasis,
			RequiresAttn:     attention,
			ContextType:      contextType,
			KeyTerms:         keyTerms,
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		d.fallback("segments", raw)
		return unstyled(original, overallSensitivity)
	}

	sc := &policy.StyledContent{
		OriginalText:       original,
		Segments:           segments,
		OverallSensitivity: overall,
		StylingApplied:     true,
		TotalSegments:      len(segments),
	}
	for _, seg := range segments {
		switch {
		case seg.SensitivityScore >= 8.0:
			sc.HighSensitivityCount++
		case seg.SensitivityScore >= 5.0:
			sc.MediumSensitivityCount++
		}
	}
	return sc
}

// locate finds text within original starting at cursor. Returns the span
// and whether it was an actual match; on miss the span is approximated
// from the cursor so downstream rendering still has monotonic offsets.
func locate(original, lowerOriginal, text string, cursor int) (start, end int, found bool) {
	if cursor > len(original) {
		cursor = len(original)
	}

	if idx := strings.Index(original[cursor:], text); idx >= 0 {
		start = cursor + idx
		return start, start + len(text), true
	}
	if idx := strings.Index(lowerOriginal[cursor:], strings.ToLower(text)); idx >= 0 {
		start = cursor + idx
		return start, start + len(text), true
	}

	start = cursor
	end = cursor + len(text)
	if end > len(original) {
		end = len(original)
	}
	return start, end, false
}
