package analyzer

import (
	"sort"

	"github.com/policylens/policylens/internal/policy"
)

// rankSections orders sections by importance descending. The sort is
// stable so equally important sections keep their document order.
func rankSections(sections []policy.Section) []policy.Section {
	ranked := make([]policy.Section, len(sections))
	copy(ranked, sections)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ImportanceScore > ranked[j].ImportanceScore
	})
	return ranked
}

// buildComponents synthesizes one UI component per ranked section, with
// 1-based priority following the ranking.
func buildComponents(ranked []policy.Section) []policy.UIComponent {
	components := make([]policy.UIComponent, 0, len(ranked))
	for i, s := range ranked {
		components = append(components, policy.UIComponent{
			ID:       "component_" + s.ID,
			Type:     componentType(s),
			Priority: i + 1,
			Content: policy.ComponentContent{
				Title:              s.Title,
				Summary:            s.Summary,
				RiskLevel:          s.Impact.RiskLevel,
				SensitivityScore:   s.Impact.SensitivityScore,
				PrivacyImpactScore: s.Impact.PrivacyImpactScore,
				DataSharingRisk:    s.Impact.DataSharingRisk,
				UserControl:        s.Impact.UserControl,
				TransparencyScore:  s.Impact.TransparencyScore,
				KeyConcerns:        s.Impact.KeyConcerns,
				UserRights:         s.UserRights,
				DataTypes:          s.DataTypes,
				ImportanceScore:    s.ImportanceScore,
				OriginalContent:    s.OriginalText,
				EngagementLevel:    s.Impact.EngagementLevel,
				RequiresQuiz:       s.RequiresQuiz,
				TextEmphasisLevel:  s.Impact.TextEmphasisLevel,
				HighlightColor:     s.Impact.HighlightColor,
				FontWeight:         s.Impact.FontWeight,
				WordCount:          s.WordCount,
				ReadingTime:        s.ReadingTime,
				StyledContent:      s.StyledContent,
				StyledSummary:      s.StyledSummary,
				Quiz:               s.Quiz,
			},
			Metadata: policy.ComponentMeta{
				ProcessedAt:      s.CreatedAt,
				EntityCount:      len(s.Entities),
				ActionableRights: s.Impact.ActionableRights,
				NeedsInteraction: s.Impact.EngagementLevel != policy.EngagementStandard,
				HighAttention:    s.Impact.SensitivityScore >= 8.0,
			},
		})
	}
	return components
}

// componentType picks the rendering treatment for a section. Rules are
// evaluated in order; the first match wins.
func componentType(s policy.Section) string {
	switch {
	case s.Impact.EngagementLevel == policy.EngagementQuiz:
		return "quiz_component"
	case s.Impact.EngagementLevel == policy.EngagementInteractive:
		return "interactive_component"
	case s.Impact.SensitivityScore >= 8.0:
		return "high_sensitivity_card"
	case s.Impact.PrivacyImpactScore >= 7.0:
		return "privacy_warning"
	case s.ImportanceScore > 0.8:
		return "highlight_card"
	case s.Impact.DataSharingRisk >= 7.0:
		return "risk_warning"
	case len(s.UserRights) > 0:
		return "rights_interactive"
	case len(s.DataTypes) > 0:
		return "data_collection_card"
	default:
		return "standard_card"
	}
}
