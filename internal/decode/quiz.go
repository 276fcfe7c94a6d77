package decode

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/policylens/policylens/internal/policy"
)

type optionPayload struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// UnmarshalJSON accepts either a bare string or an option object.
func (o *optionPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Text = s
		return nil
	}
	type plain optionPayload
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = optionPayload(p)
	return nil
}

type questionPayload struct {
	QuestionText  string          `json:"question_text"`
	Question      string          `json:"question"`
	QuestionType  string          `json:"question_type"`
	AltType       string          `json:"type"`
	Options       []optionPayload `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	AltAnswer     string          `json:"answer"`
	Explanation   string          `json:"explanation"`
	CorrectExplan string          `json:"correct_explanation"`
	Difficulty    string          `json:"difficulty"`
	RelatedText   string          `json:"related_content"`
	Objective     string          `json:"learning_objective"`
}

func (p questionPayload) text() string {
	if s := strings.TrimSpace(p.QuestionText); s != "" {
		return s
	}
	return strings.TrimSpace(p.Question)
}

func (p questionPayload) qType() string {
	t := strings.ToLower(strings.TrimSpace(p.QuestionType))
	if t == "" {
		t = strings.ToLower(strings.TrimSpace(p.AltType))
	}
	switch t {
	case "true_false", "fill_blank", "multiple_choice":
		return t
	}
	return "multiple_choice"
}

func (p questionPayload) answer() string {
	if s := strings.TrimSpace(p.CorrectAnswer); s != "" {
		return s
	}
	return strings.TrimSpace(p.AltAnswer)
}

func (p questionPayload) explanation() string {
	if p.CorrectExplan != "" {
		return p.CorrectExplan
	}
	return p.Explanation
}

// extractQuestions tries the three payload shapes the service has been
// observed to emit, in order: a bare question array, {"questions": [...]},
// and {"quiz": {"questions": [...]}}.
func extractQuestions(body string) ([]questionPayload, bool) {
	var bare []questionPayload
	if err := json.Unmarshal([]byte(body), &bare); err == nil {
		return bare, true
	}

	var wrapped struct {
		Questions []questionPayload `json:"questions"`
	}
	if err := json.Unmarshal([]byte(body), &wrapped); err == nil && wrapped.Questions != nil {
		return wrapped.Questions, true
	}

	var nested struct {
		Quiz struct {
			Questions []questionPayload `json:"questions"`
		} `json:"quiz"`
	}
	if err := json.Unmarshal([]byte(body), &nested); err == nil && nested.Quiz.Questions != nil {
		return nested.Quiz.Questions, true
	}

	return nil, false
}

// affirmativeTokens decide true/false correctness from a correct_answer
// value, matched case-insensitively.
var affirmativeTokens = map[string]bool{"true": true, "t": true, "yes": true, "1": true}

func isAffirmative(s string) bool {
	return affirmativeTokens[strings.ToLower(strings.TrimSpace(s))]
}

var difficultyPoints = map[string]int{"easy": 1, "medium": 2, "hard": 3}

// Quiz decodes a quiz generation response for a section. nil means the
// quiz is absent: the response did not match any known shape or held no
// usable question. Option matching never invents a correct answer; a
// multiple-choice question whose answer matches no option simply has no
// correct option.
func (d *Decoder) Quiz(raw, sectionID, sectionTitle, sectionContent string, sensitivity float64) *policy.Quiz {
	payloads, ok := extractQuestions(StripFences(raw))
	if !ok {
		d.fallback("quiz", raw)
		return nil
	}

	quizID := "quiz_" + sectionID
	questions := make([]policy.QuizQuestion, 0, len(payloads))
	for _, p := range payloads {
		q, ok := buildQuestion(p, quizID, len(questions)+1, sectionContent, sensitivity)
		if !ok {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		d.fallback("quiz", raw)
		return nil
	}

	title := strings.TrimSpace(sectionTitle)
	if title == "" {
		title = "This Section"
	}

	quiz := &policy.Quiz{
		ID:                   quizID,
		Title:                "Quiz: " + title,
		Description:          "Check your understanding of the key privacy practices described in this section.",
		SectionID:            sectionID,
		Questions:            questions,
		EstimatedTimeMinutes: maxInt(2, len(questions)),
		PassingScore:         70,
		SensitivityThreshold: clamp(sensitivity, 0, 10),
		CreatedAt:            time.Now().UTC(),
	}
	for _, q := range questions {
		quiz.TotalPoints += q.Points
	}
	return quiz
}

func buildQuestion(p questionPayload, quizID string, ordinal int, sectionContent string, sensitivity float64) (policy.QuizQuestion, bool) {
	text := p.text()
	if text == "" {
		return policy.QuizQuestion{}, false
	}

	qID := fmt.Sprintf("%s_q%d", quizID, ordinal)
	qType := p.qType()

	difficulty := strings.ToLower(strings.TrimSpace(p.Difficulty))
	points, ok := difficultyPoints[difficulty]
	if !ok {
		difficulty = "medium"
		points = difficultyPoints[difficulty]
	}

	var options []policy.QuizOption
	switch qType {
	case "true_false":
		options = trueFalseOptions(qID, p.answer())
	case "fill_blank":
		answer := p.answer()
		if answer == "" {
			return policy.QuizQuestion{}, false
		}
		options = []policy.QuizOption{{
			ID:        qID + "_o1",
			Text:      answer,
			IsCorrect: true,
		}}
	default:
		options = choiceOptions(qID, p.Options, p.answer())
		if len(options) == 0 {
			return policy.QuizQuestion{}, false
		}
	}

	related := strings.TrimSpace(p.RelatedText)
	if related == "" {
		related = truncate(sectionContent, 200)
	}

	return policy.QuizQuestion{
		ID:                qID,
		QuestionText:      text,
		QuestionType:      qType,
		Options:           options,
		CorrectExplan:     p.explanation(),
		Difficulty:        difficulty,
		Points:            points,
		RelatedContent:    related,
		SensitivityScore:  clamp(sensitivity, 0, 10),
		LearningObjective: p.Objective,
	}, true
}

func trueFalseOptions(qID, answer string) []policy.QuizOption {
	correct := isAffirmative(answer)
	return []policy.QuizOption{
		{ID: qID + "_o1", Text: "True", IsCorrect: correct},
		{ID: qID + "_o2", Text: "False", IsCorrect: !correct},
	}
}

// choiceOptions builds multiple-choice options. Explicit is_correct flags
// from the payload win; otherwise the correct answer is matched against
// option texts exact-trim first, then by substring containment in either
// direction.
func choiceOptions(qID string, payloads []optionPayload, answer string) []policy.QuizOption {
	options := make([]policy.QuizOption, 0, len(payloads))
	flagged := false
	for _, p := range payloads {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if p.IsCorrect {
			flagged = true
		}
		options = append(options, policy.QuizOption{
			ID:          fmt.Sprintf("%s_o%d", qID, len(options)+1),
			Text:        text,
			IsCorrect:   p.IsCorrect,
			Explanation: p.Explanation,
		})
	}
	if flagged || answer == "" {
		return options
	}

	markMatches(options, answer)
	return options
}

func markMatches(options []policy.QuizOption, answer string) {
	want := strings.ToLower(strings.TrimSpace(answer))

	exact := false
	for i := range options {
		if strings.ToLower(options[i].Text) == want {
			options[i].IsCorrect = true
			exact = true
		}
	}
	if exact {
		return
	}

	for i := range options {
		have := strings.ToLower(options[i].Text)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			options[i].IsCorrect = true
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
