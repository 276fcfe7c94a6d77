package decode

import (
	"strconv"
	"testing"
	"time"

	"github.com/policylens/policylens/internal/llm"
	"github.com/policylens/policylens/internal/policy"
)

func newTestDecoder() (*Decoder, *llm.Stats) {
	stats := llm.NewStats(time.Hour)
	return New(nil, stats), stats
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```  ", `{}`},
		{"fence marker inside text untouched", "prefix ``` middle", "prefix ``` middle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestImpactDecodesFencedResponse(t *testing.T) {
	d, stats := newTestDecoder()
	raw := "```json\n" + `{
		"risk_level": "High",
		"sensitivity_score": 8.5,
		"privacy_impact_score": 7.0,
		"data_sharing_risk": 9.0,
		"user_control": 2,
		"transparency_score": 3,
		"key_concerns": ["Data sold to third parties"],
		"actionable_rights": ["opt_out", "deletion"],
		"engagement_level": "quiz",
		"text_emphasis_level": 5,
		"highlight_color": "red",
		"font_weight": "bold"
	}` + "\n```"

	imp := d.Impact(raw)
	if imp.RiskLevel != policy.RiskHigh {
		t.Errorf("risk = %q, want high", imp.RiskLevel)
	}
	if imp.SensitivityScore != 8.5 || imp.DataSharingRisk != 9.0 {
		t.Errorf("scores not carried: %+v", imp)
	}
	if len(imp.ActionableRights) != 2 || imp.ActionableRights[0] != policy.RightOptOut || imp.ActionableRights[1] != policy.RightDeletion {
		t.Errorf("rights = %v", imp.ActionableRights)
	}
	if imp.EngagementLevel != policy.EngagementQuiz {
		t.Errorf("engagement = %q", imp.EngagementLevel)
	}
	if n := stats.Snapshot().DecodeFallbacks["impact"]; n != 0 {
		t.Errorf("valid decode must not count a fallback, got %d", n)
	}
}

func TestImpactClampsOutOfRangeScores(t *testing.T) {
	d, _ := newTestDecoder()
	imp := d.Impact(`{"sensitivity_score": "15", "privacy_impact_score": -3, "user_control": 9, "transparency_score": 0}`)
	if imp.SensitivityScore != 10.0 {
		t.Errorf("sensitivity = %v, want clamp to 10", imp.SensitivityScore)
	}
	if imp.PrivacyImpactScore != 0.0 {
		t.Errorf("privacy impact = %v, want clamp to 0", imp.PrivacyImpactScore)
	}
	if imp.UserControl != 5 || imp.TransparencyScore != 1 {
		t.Errorf("1-5 scales not clamped: control=%d transparency=%d", imp.UserControl, imp.TransparencyScore)
	}
}

func TestImpactFallsBackOnGarbage(t *testing.T) {
	d, stats := newTestDecoder()
	imp := d.Impact("I'm sorry, I can't produce JSON for that.")

	want := DefaultImpact()
	if imp.RiskLevel != want.RiskLevel || imp.SensitivityScore != want.SensitivityScore {
		t.Errorf("fallback mismatch: got %+v", imp)
	}
	if imp.UserControl != 3 || imp.TransparencyScore != 3 {
		t.Errorf("fallback scales: control=%d transparency=%d", imp.UserControl, imp.TransparencyScore)
	}
	if len(imp.KeyConcerns) != 1 {
		t.Errorf("fallback should carry one generic concern, got %v", imp.KeyConcerns)
	}
	if n := stats.Snapshot().DecodeFallbacks["impact"]; n != 1 {
		t.Errorf("expected 1 counted fallback, got %d", n)
	}
}

func TestImpactDerivesMissingFieldsFromSensitivity(t *testing.T) {
	cases := []struct {
		name           string
		sensitivity    float64
		wantRisk       policy.RiskLevel
		wantEngagement policy.EngagementLevel
		wantColor      string
		wantWeight     string
		wantEmphasis   int
	}{
		{"very high", 9.0, policy.RiskHigh, policy.EngagementQuiz, "red", "bold", 5},
		{"elevated", 6.5, policy.RiskMedium, policy.EngagementInteractive, "orange", "medium", 4},
		{"moderate", 4.5, policy.RiskMedium, policy.EngagementStandard, "yellow", "medium", 3},
		{"low", 2.0, policy.RiskLow, policy.EngagementStandard, "neutral", "normal", 1},
	}
	d, _ := newTestDecoder()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			imp := d.Impact(`{"sensitivity_score": ` + strconv.FormatFloat(tc.sensitivity, 'f', 1, 64) + `}`)
			if imp.RiskLevel != tc.wantRisk {
				t.Errorf("risk = %q, want %q", imp.RiskLevel, tc.wantRisk)
			}
			if imp.EngagementLevel != tc.wantEngagement {
				t.Errorf("engagement = %q, want %q", imp.EngagementLevel, tc.wantEngagement)
			}
			if imp.HighlightColor != tc.wantColor || imp.FontWeight != tc.wantWeight || imp.TextEmphasisLevel != tc.wantEmphasis {
				t.Errorf("style = %s/%s/%d, want %s/%s/%d",
					imp.HighlightColor, imp.FontWeight, imp.TextEmphasisLevel,
					tc.wantColor, tc.wantWeight, tc.wantEmphasis)
			}
		})
	}
}

func TestNormalizeRights(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []policy.UserRight
	}{
		{"exact", []string{"access", "deletion"}, []policy.UserRight{policy.RightAccess, policy.RightDeletion}},
		{"spaces and case", []string{"Opt Out"}, []policy.UserRight{policy.RightOptOut}},
		{"substring forward", []string{"right_to_deletion"}, []policy.UserRight{policy.RightDeletion}},
		{"substring backward", []string{"portab"}, []policy.UserRight{policy.RightPortability}},
		{"alias", []string{"withdraw consent"}, []policy.UserRight{policy.RightConsentWithdrawal}},
		{"unmappable dropped", []string{"access", "teleportation"}, []policy.UserRight{policy.RightAccess}},
		{"dedup keeps first", []string{"delete", "deletion", "access"}, []policy.UserRight{policy.RightDeletion, policy.RightAccess}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeRights(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestEntitiesDecodeAndClamp(t *testing.T) {
	d, _ := newTestDecoder()
	raw := `{"entities": [
		{"entity_type": "Data_Type", "value": "email address", "context": "collected at signup", "confidence": 1.4},
		{"entity_type": "third_party", "value": "", "confidence": 0.9},
		{"entity_type": "retention", "value": "90 days", "confidence": 0.7}
	]}`

	got := d.Entities(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 entities (empty value skipped), got %d", len(got))
	}
	if got[0].Type != "data_type" || got[0].Confidence != 1.0 {
		t.Errorf("first entity = %+v, want lowered type and confidence clamped to 1", got[0])
	}
	if got[1].Value != "90 days" {
		t.Errorf("second entity = %+v", got[1])
	}
}

func TestEntitiesFallbackIsEmptyList(t *testing.T) {
	d, stats := newTestDecoder()
	got := d.Entities("not json at all")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", got)
	}
	if n := stats.Snapshot().DecodeFallbacks["entities"]; n != 1 {
		t.Errorf("expected 1 counted fallback, got %d", n)
	}
}

func TestImportance(t *testing.T) {
	d, stats := newTestDecoder()
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain float", "0.85", 0.85},
		{"fenced", "```\n0.3\n```", 0.3},
		{"clamped high", "7", 1.0},
		{"clamped negative", "-0.2", 0.0},
		{"garbage", "very important", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.Importance(tc.raw); got != tc.want {
				t.Errorf("Importance(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
	if n := stats.Snapshot().DecodeFallbacks["importance"]; n != 1 {
		t.Errorf("expected exactly the garbage case counted, got %d", n)
	}
}
