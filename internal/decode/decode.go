// Package decode turns the external service's free-form output into typed
// records. Decoding is total: malformed or schema-mismatched content is
// absorbed into typed defaults, counted for visibility, and never surfaced
// as an error.
package decode

import (
	"encoding/json"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/policylens/policylens/internal/llm"
	"github.com/policylens/policylens/internal/policy"
)

// Decoder converts raw response text into domain types.
type Decoder struct {
	log   *slog.Logger
	stats *llm.Stats
}

func New(log *slog.Logger, stats *llm.Stats) *Decoder {
	if log == nil {
		log = slog.Default()
	}
	return &Decoder{log: log, stats: stats}
}

func (d *Decoder) fallback(kind, raw string) {
	d.log.Warn("decode fallback", "kind", kind, "raw", truncate(raw, 200))
	if d.stats != nil {
		d.stats.RecordFallback(kind)
	}
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripFences removes surrounding markdown code-fence markers and trims
// whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// flexFloat tolerates numbers arriving as JSON numbers or numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DefaultImpact is the typed fallback for a failed impact decode: medium
// risk, mid-scale scores, and a single generic concern.
func DefaultImpact() policy.ImpactAssessment {
	imp := policy.ImpactAssessment{
		RiskLevel:          policy.RiskMedium,
		SensitivityScore:   5.0,
		PrivacyImpactScore: 5.0,
		DataSharingRisk:    5.0,
		UserControl:        3,
		TransparencyScore:  3,
		KeyConcerns:        []string{"Automated analysis unavailable for this section; review it manually"},
		ActionableRights:   []policy.UserRight{},
		EngagementLevel:    policy.EngagementStandard,
	}
	imp.HighlightColor, imp.FontWeight, imp.TextEmphasisLevel, _ = DeriveStyle(imp.SensitivityScore)
	return imp
}

type impactPayload struct {
	RiskLevel          string     `json:"risk_level"`
	SensitivityScore   *flexFloat `json:"sensitivity_score"`
	PrivacyImpactScore *flexFloat `json:"privacy_impact_score"`
	DataSharingRisk    *flexFloat `json:"data_sharing_risk"`
	UserControl        *flexFloat `json:"user_control"`
	TransparencyScore  *flexFloat `json:"transparency_score"`
	KeyConcerns        []string   `json:"key_concerns"`
	ActionableRights   []string   `json:"actionable_rights"`
	EngagementLevel    string     `json:"engagement_level"`
	TextEmphasisLevel  *flexFloat `json:"text_emphasis_level"`
	HighlightColor     string     `json:"highlight_color"`
	FontWeight         string     `json:"font_weight"`
}

// Impact decodes an impact assessment, recomputing any style or engagement
// field the response omitted or contradicted so the result stays internally
// consistent with the sensitivity score.
func (d *Decoder) Impact(raw string) policy.ImpactAssessment {
	var p impactPayload
	if err := json.Unmarshal([]byte(StripFences(raw)), &p); err != nil {
		d.fallback("impact", raw)
		return DefaultImpact()
	}

	imp := policy.ImpactAssessment{
		SensitivityScore:   scoreOrDefault(p.SensitivityScore, 5.0),
		PrivacyImpactScore: scoreOrDefault(p.PrivacyImpactScore, 5.0),
		DataSharingRisk:    scoreOrDefault(p.DataSharingRisk, 5.0),
		UserControl:        scaleOrDefault(p.UserControl, 3),
		TransparencyScore:  scaleOrDefault(p.TransparencyScore, 3),
		KeyConcerns:        p.KeyConcerns,
		ActionableRights:   NormalizeRights(p.ActionableRights),
	}
	if imp.KeyConcerns == nil {
		imp.KeyConcerns = []string{}
	}

	imp.RiskLevel = normalizeRisk(p.RiskLevel, imp.SensitivityScore)
	imp.EngagementLevel = normalizeEngagement(p.EngagementLevel, imp.SensitivityScore)

	color, weight, emphasis, _ := DeriveStyle(imp.SensitivityScore)
	imp.HighlightColor = validOr(p.HighlightColor, highlightColors, color)
	imp.FontWeight = validOr(p.FontWeight, fontWeights, weight)
	imp.TextEmphasisLevel = emphasis
	if p.TextEmphasisLevel != nil {
		v := int(math.Round(float64(*p.TextEmphasisLevel)))
		if v >= 1 && v <= 5 {
			imp.TextEmphasisLevel = v
		}
	}

	return imp
}

func scoreOrDefault(v *flexFloat, def float64) float64 {
	if v == nil {
		return def
	}
	return clamp(float64(*v), 0, 10)
}

func scaleOrDefault(v *flexFloat, def int) int {
	if v == nil {
		return def
	}
	return clampInt(int(math.Round(float64(*v))), 1, 5)
}

func normalizeRisk(s string, sensitivity float64) policy.RiskLevel {
	switch policy.RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case policy.RiskHigh:
		return policy.RiskHigh
	case policy.RiskMedium:
		return policy.RiskMedium
	case policy.RiskLow:
		return policy.RiskLow
	}
	// Derive from sensitivity when the response omits or mangles it.
	switch {
	case sensitivity >= 7.0:
		return policy.RiskHigh
	case sensitivity >= 4.0:
		return policy.RiskMedium
	default:
		return policy.RiskLow
	}
}

func normalizeEngagement(s string, sensitivity float64) policy.EngagementLevel {
	switch policy.EngagementLevel(strings.ToLower(strings.TrimSpace(s))) {
	case policy.EngagementStandard:
		return policy.EngagementStandard
	case policy.EngagementInteractive:
		return policy.EngagementInteractive
	case policy.EngagementQuiz:
		return policy.EngagementQuiz
	}
	switch {
	case sensitivity >= 8.0:
		return policy.EngagementQuiz
	case sensitivity >= 6.0:
		return policy.EngagementInteractive
	default:
		return policy.EngagementStandard
	}
}

var (
	highlightColors = map[string]bool{"neutral": true, "yellow": true, "orange": true, "red": true, "blue": true}
	fontWeights     = map[string]bool{"normal": true, "medium": true, "bold": true}
	textColors      = map[string]bool{"default": true, "red": true, "orange": true, "blue": true}
)

func validOr(s string, allowed map[string]bool, def string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if allowed[s] {
		return s
	}
	return def
}

// DeriveStyle maps a sensitivity score onto default styling fields.
func DeriveStyle(sensitivity float64) (color, weight string, emphasis int, attention bool) {
	switch {
	case sensitivity >= 8.0:
		return "red", "bold", 5, true
	case sensitivity >= 6.0:
		return "orange", "medium", 4, true
	case sensitivity >= 4.0:
		return "yellow", "medium", 3, false
	default:
		return "neutral", "normal", 1, false
	}
}

// rightAliases maps free-text right names onto the UserRight enum. Exact
// match is tried first, then substring containment in either direction.
var rightAliases = []struct {
	key   string
	right policy.UserRight
}{
	{"access", policy.RightAccess},
	{"deletion", policy.RightDeletion},
	{"delete", policy.RightDeletion},
	{"portability", policy.RightPortability},
	{"opt_out", policy.RightOptOut},
	{"opt-out", policy.RightOptOut},
	{"correction", policy.RightCorrection},
	{"modify", policy.RightCorrection},
	{"modification", policy.RightCorrection},
	{"consent_withdrawal", policy.RightConsentWithdrawal},
	{"withdraw", policy.RightConsentWithdrawal},
}

// NormalizeRights maps free-text right names to UserRight values.
// Unmappable values are dropped; duplicates are removed preserving first
// occurrence order.
func NormalizeRights(values []string) []policy.UserRight {
	out := make([]policy.UserRight, 0, len(values))
	seen := make(map[policy.UserRight]bool)

	add := func(r policy.UserRight) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	for _, v := range values {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), " ", "_")
		if key == "" {
			continue
		}
		matched := false
		for _, a := range rightAliases {
			if a.key == key {
				add(a.right)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, a := range rightAliases {
			if strings.Contains(key, a.key) || strings.Contains(a.key, key) {
				add(a.right)
				break
			}
		}
	}
	return out
}

type entityPayload struct {
	EntityType string     `json:"entity_type"`
	Value      string     `json:"value"`
	Context    string     `json:"context"`
	Confidence *flexFloat `json:"confidence"`
}

type entitiesEnvelope struct {
	Entities []entityPayload `json:"entities"`
}

// Entities decodes an entity extraction response. The fallback for any
// failure is an empty list.
func (d *Decoder) Entities(raw string) []policy.ExtractedEntity {
	var env entitiesEnvelope
	if err := json.Unmarshal([]byte(StripFences(raw)), &env); err != nil {
		d.fallback("entities", raw)
		return []policy.ExtractedEntity{}
	}

	out := make([]policy.ExtractedEntity, 0, len(env.Entities))
	for _, e := range env.Entities {
		if strings.TrimSpace(e.Value) == "" {
			continue
		}
		conf := 0.0
		if e.Confidence != nil {
			conf = clamp(float64(*e.Confidence), 0, 1)
		}
		out = append(out, policy.ExtractedEntity{
			Type:       strings.ToLower(strings.TrimSpace(e.EntityType)),
			Value:      strings.TrimSpace(e.Value),
			Context:    e.Context,
			Confidence: conf,
		})
	}
	return out
}

// Importance parses a bare float score, clamped to [0,1]. Anything that
// does not parse yields 0.5.
func (d *Decoder) Importance(raw string) float64 {
	v, err := strconv.ParseFloat(StripFences(raw), 64)
	if err != nil {
		d.fallback("importance", raw)
		return 0.5
	}
	return clamp(v, 0, 1)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
