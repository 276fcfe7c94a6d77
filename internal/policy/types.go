// Package policy defines the domain model for analyzed privacy policies:
// chunks produced by the segmenter, enriched sections, quizzes, and the
// aggregated document returned to callers.
package policy

import "time"

// RiskLevel classifies a section or document.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// DataType categorizes data a policy section mentions collecting.
type DataType string

const (
	DataPersonal   DataType = "personal"
	DataSensitive  DataType = "sensitive"
	DataBehavioral DataType = "behavioral"
	DataTechnical  DataType = "technical"
	DataFinancial  DataType = "financial"
)

// ParseDataType maps free text to a DataType. ok is false for unknown values.
func ParseDataType(s string) (DataType, bool) {
	switch DataType(s) {
	case DataPersonal, DataSensitive, DataBehavioral, DataTechnical, DataFinancial:
		return DataType(s), true
	}
	return "", false
}

// UserRight is a right users can exercise under a policy.
type UserRight string

const (
	RightAccess            UserRight = "access"
	RightDeletion          UserRight = "deletion"
	RightPortability       UserRight = "portability"
	RightOptOut            UserRight = "opt_out"
	RightCorrection        UserRight = "correction"
	RightConsentWithdrawal UserRight = "consent_withdrawal"
)

// EngagementLevel is the UI interaction tier for a section.
type EngagementLevel string

const (
	EngagementStandard    EngagementLevel = "standard"
	EngagementInteractive EngagementLevel = "interactive"
	EngagementQuiz        EngagementLevel = "quiz"
)

// Chunk is a bounded slice of the input document. Immutable once created;
// Position is the sole ordering key downstream.
type Chunk struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Title    string `json:"title,omitempty"`
	Position int    `json:"position"`
	Tokens   int    `json:"tokens"`
}

// ExtractedEntity is one entity pulled from a section by the external service.
type ExtractedEntity struct {
	Type       string  `json:"entity_type"`
	Value      string  `json:"value"`
	Context    string  `json:"context"`
	Confidence float64 `json:"confidence"`
}

// ImpactAssessment scores how a section affects users. The style and
// engagement fields are kept consistent with SensitivityScore by the
// decoder; callers can rely on that.
type ImpactAssessment struct {
	RiskLevel RiskLevel `json:"risk_level"`

	SensitivityScore   float64 `json:"sensitivity_score"`
	PrivacyImpactScore float64 `json:"privacy_impact_score"`
	DataSharingRisk    float64 `json:"data_sharing_risk"`

	UserControl       int `json:"user_control"`
	TransparencyScore int `json:"transparency_score"`

	KeyConcerns      []string    `json:"key_concerns"`
	ActionableRights []UserRight `json:"actionable_rights"`

	EngagementLevel   EngagementLevel `json:"engagement_level"`
	TextEmphasisLevel int             `json:"text_emphasis_level"`
	HighlightColor    string          `json:"highlight_color"`
	FontWeight        string          `json:"font_weight"`
}

// TextSegment is a slice of styled text. Offsets are best effort: when the
// external service returns text that is not an exact substring of the
// original, positions are approximated.
type TextSegment struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	SensitivityScore float64  `json:"sensitivity_score"`
	StartPosition    int      `json:"start_position"`
	EndPosition      int      `json:"end_position"`
	HighlightColor   string   `json:"highlight_color"`
	TextColor        string   `json:"text_color"`
	FontWeight       string   `json:"font_weight"`
	TextEmphasis     int      `json:"text_emphasis"`
	RequiresAttn     bool     `json:"requires_attention"`
	ContextType      string   `json:"context_type"`
	KeyTerms         []string `json:"key_terms"`
}

// StyledContent is original text plus sensitivity-styled segments.
type StyledContent struct {
	OriginalText       string        `json:"original_text"`
	Segments           []TextSegment `json:"segments"`
	OverallSensitivity float64       `json:"overall_sensitivity"`
	StylingApplied     bool          `json:"styling_applied"`

	HighSensitivityCount   int `json:"high_sensitivity_count"`
	MediumSensitivityCount int `json:"medium_sensitivity_count"`
	TotalSegments          int `json:"total_segments"`
}

// QuizOption is one answer choice.
type QuizOption struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation,omitempty"`
}

// QuizQuestion is a single question. For multiple_choice and true_false
// exactly one option is marked correct; fill_blank has a single correct
// option holding the accepted answer.
type QuizQuestion struct {
	ID                string       `json:"id"`
	QuestionText      string       `json:"question_text"`
	QuestionType      string       `json:"question_type"`
	Options           []QuizOption `json:"options"`
	CorrectExplan     string       `json:"correct_explanation"`
	Difficulty        string       `json:"difficulty"`
	Points            int          `json:"points"`
	RelatedContent    string       `json:"related_content"`
	SensitivityScore  float64      `json:"sensitivity_score"`
	LearningObjective string       `json:"learning_objective"`
}

// Quiz is the interactive quiz attached to a high-sensitivity section.
type Quiz struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	SectionID   string         `json:"section_id"`
	Questions   []QuizQuestion `json:"questions"`

	EstimatedTimeMinutes int       `json:"estimated_time_minutes"`
	PassingScore         int       `json:"passing_score"`
	TotalPoints          int       `json:"total_points"`
	SensitivityThreshold float64   `json:"sensitivity_threshold"`
	CreatedAt            time.Time `json:"created_at"`
}

// Section is a fully enriched chunk.
//
// Invariant: RequiresQuiz == (Quiz != nil) for every section handed to
// callers. The flag is derived from the generation outcome, never from the
// pre-check alone.
type Section struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	OriginalText  string         `json:"original_content"`
	Summary       string         `json:"summary"`
	StyledContent *StyledContent `json:"styled_content,omitempty"`
	StyledSummary *StyledContent `json:"styled_summary,omitempty"`

	Impact ImpactAssessment `json:"user_impact"`

	Quiz         *Quiz `json:"quiz,omitempty"`
	RequiresQuiz bool  `json:"requires_quiz"`

	Entities   []ExtractedEntity `json:"entities"`
	DataTypes  []DataType        `json:"data_types"`
	UserRights []UserRight       `json:"user_rights"`

	ImportanceScore float64 `json:"importance_score"`
	WordCount       int     `json:"word_count"`
	ReadingTime     int     `json:"reading_time"`

	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is the complete analyzed policy. Sections are stored in final
// ranked order (importance descending), not original document order.
type Document struct {
	ID            string     `json:"id"`
	CompanyName   string     `json:"company_name"`
	Title         string     `json:"title"`
	Version       string     `json:"version,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`

	Sections []Section `json:"sections"`

	OverallRiskLevel      RiskLevel `json:"overall_risk_level"`
	UserFriendliness      int       `json:"user_friendliness_score"`
	OverallSensitivity    float64   `json:"overall_sensitivity_score"`
	OverallPrivacyImpact  float64   `json:"overall_privacy_impact"`
	ComplianceScore       float64   `json:"compliance_score"`
	ReadabilityScore      float64   `json:"readability_score"`
	TotalWordCount        int       `json:"total_word_count"`
	EstimatedReadingTime  int       `json:"estimated_reading_time"`
	HighRiskSections      int       `json:"high_risk_sections"`
	InteractiveSections   int       `json:"interactive_sections"`

	ProcessingStatus string    `json:"processing_status"`
	CreatedAt        time.Time `json:"created_at"`
}

// UIComponent describes one renderable card for the frontend, ranked by
// priority (1 = highest).
type UIComponent struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Priority int              `json:"priority"`
	Content  ComponentContent `json:"content"`
	Metadata ComponentMeta    `json:"metadata"`
}

// ComponentContent carries everything the frontend needs to render a
// section card.
type ComponentContent struct {
	Title              string         `json:"title"`
	Summary            string         `json:"summary"`
	RiskLevel          RiskLevel      `json:"risk_level"`
	SensitivityScore   float64        `json:"sensitivity_score"`
	PrivacyImpactScore float64        `json:"privacy_impact_score"`
	DataSharingRisk    float64        `json:"data_sharing_risk"`
	UserControl        int            `json:"user_control"`
	TransparencyScore  int            `json:"transparency_score"`
	KeyConcerns        []string       `json:"key_concerns"`
	UserRights         []UserRight    `json:"user_rights"`
	DataTypes          []DataType     `json:"data_types"`
	ImportanceScore    float64        `json:"importance_score"`
	OriginalContent    string         `json:"original_content"`
	EngagementLevel    EngagementLevel `json:"engagement_level"`
	RequiresQuiz       bool           `json:"requires_quiz"`
	TextEmphasisLevel  int            `json:"text_emphasis_level"`
	HighlightColor     string         `json:"highlight_color"`
	FontWeight         string         `json:"font_weight"`
	WordCount          int            `json:"word_count"`
	ReadingTime        int            `json:"reading_time"`
	StyledContent      *StyledContent `json:"styled_content,omitempty"`
	StyledSummary      *StyledContent `json:"styled_summary,omitempty"`
	Quiz               *Quiz          `json:"quiz,omitempty"`
}

// ComponentMeta carries secondary rendering hints.
type ComponentMeta struct {
	ProcessedAt      time.Time   `json:"processed_at"`
	EntityCount      int         `json:"entities_count"`
	ActionableRights []UserRight `json:"actionable_rights"`
	NeedsInteraction bool        `json:"needs_interaction"`
	HighAttention    bool        `json:"high_attention"`
}
