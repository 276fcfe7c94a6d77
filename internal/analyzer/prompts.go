package analyzer

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every call to the external service.
const SystemPrompt = `You are a privacy law expert and user advocate specialized in analyzing privacy policies.
Your role is to:
1. Extract key information from privacy policies
2. Assess user impact and risks
3. Identify user rights and company obligations
4. Provide clear, accurate analysis focused on user protection

Always be precise, avoid assumptions, and flag any ambiguities.
When providing JSON responses, ensure valid JSON format.`

const summaryPrompt = `Create a comprehensive, user-friendly summary of this privacy policy section in plain English.

Privacy Policy Section Content:
%s

Write a detailed summary that:
- Identifies and explains ALL major points, categories, or subcategories mentioned
- Highlights specific activities, technologies, or processes (not just general terms)
- Explains the practical implications and real-world meaning for users
- Mentions specific examples and details when provided in the content
- Covers the complete scope of what the section addresses
- Uses clear, simple language without legal jargon
- Is structured as 2-4 sentences that capture the full breadth

Do not use quotation marks. Write as plain text only.`

const entitiesPrompt = `Extract key entities from this privacy policy section, focusing on specific and detailed information:

%s

Look for any significant entities mentioned, including but not limited to:
- Specific data types: name, email, phone, address, payment info, biometric data, location, device info, browsing history, etc.
- User rights: access, deletion, portability, opt-out, correction, consent withdrawal
- Third parties: advertisers, partners, service providers, affiliates, etc.
- Company obligations: data protection, security measures, consent, disclosure rules
- Legal basis: legitimate interest, consent, contract, compliance

Provide a JSON response with an array of entities:
{
    "entities": [
        {
            "entity_type": "data_type/user_right/company_obligation/third_party/legal_basis",
            "value": "specific extracted value (be detailed, not generic)",
            "context": "surrounding context where found",
            "confidence": 0.95
        }
    ]
}

Extract ALL significant entities mentioned, not just the obvious ones.`

const impactPrompt = `Analyze how this privacy policy section affects users with detailed numerical scoring:

%s

Return a JSON object with this structure. Do not include any other text or formatting.
{
    "risk_level": "high/medium/low",
    "sensitivity_score": 7.5,
    "privacy_impact_score": 8.0,
    "data_sharing_risk": 6.5,
    "user_control": 3,
    "transparency_score": 4,
    "key_concerns": ["specific, detailed concerns based on actual content"],
    "actionable_rights": ["access", "deletion", "opt_out", etc.],
    "engagement_level": "standard/interactive/quiz",
    "text_emphasis_level": 4,
    "highlight_color": "neutral/yellow/orange/red",
    "font_weight": "normal/medium/bold"
}

Scoring Guidelines (0-10):
- sensitivity_score: How sensitive/concerning is this content to users?
- privacy_impact_score: How much does this impact user privacy?
- data_sharing_risk: Risk of data being shared/misused

Pay attention to any high-impact items including but not limited to:
- Biometric/health data collection
- Precise location tracking
- Cross-device/cross-site tracking
- Inferred identity profiling
- Extensive third-party sharing
- Permanent data retention
- Limited user control options

UI Enhancement Rules:
- engagement_level: "quiz" for scores 8+, "interactive" for 6-7, "standard" for <6
- text_emphasis_level: 1-5 based on importance (5 = highest emphasis)
- highlight_color: "red" for 8+, "orange" for 6-7, "yellow" for 4-5, "neutral" for <4
- font_weight: "bold" for 8+, "medium" for 6-7, "normal" for <6`

const importancePrompt = `Calculate an importance score (0.0 to 1.0) for this privacy policy section:

Content: %s
User Impact: Risk Level: %s, User Control: %d

Consider:
- User rights and freedoms impact
- Data sensitivity
- Legal obligations
- Potential consequences
- User decision-making needs

Respond with just a number between 0.0 and 1.0.`

const segmentsPrompt = `Analyze this privacy policy text and break it into segments with sensitivity scoring for text visualization:

%s

Overall Content Sensitivity: %.1f/10

Create segments that should have different visual emphasis. Look for any content that has significance for users, including but not limited to:
- Statements about data collection, usage, or sharing
- User rights, choices, and control options
- Third-party involvement and partnerships
- Data retention, storage, and deletion policies
- Security measures and breach procedures
- Contact information and support channels

Provide a JSON response:
{
    "segments": [
        {
            "text": "specific text segment",
            "sensitivity_score": 7.5,
            "context_type": "data_collection/sharing/rights/retention/contact/general",
            "key_terms": ["personal data", "third party"],
            "highlight_color": "red/orange/yellow/blue/neutral",
            "text_color": "default/red/orange/blue",
            "font_weight": "normal/medium/bold",
            "text_emphasis": 3,
            "requires_attention": true
        }
    ]
}

Guidelines:
- Break text into logical segments (sentences or phrases)
- High sensitivity (8+): red highlights, bold text
- Medium sensitivity (5-7): orange/yellow highlights, medium weight
- Low sensitivity (<5): neutral/blue highlights, normal weight
- Keep segments readable and not overwhelming
- Focus on parts that users need to pay attention to`

const quizPrompt = `You are an expert privacy policy educator. Create an interactive quiz to help users understand the most concerning aspects of this privacy policy section.

SECTION TITLE: %s
SECTION CONTENT: %s
SENSITIVITY SCORE: %.1f/10

Create a quiz with 2-4 questions that test understanding of:
1. Key privacy risks and implications
2. User rights and options
3. Data handling practices
4. Potential consequences for users

REQUIREMENTS:
- Focus on the most concerning privacy aspects
- Include multiple choice questions with 3-4 options each
- Provide detailed explanations for correct answers
- Make questions educational, not just factual
- Ensure questions help users make informed decisions

QUESTION TYPES:
- Multiple choice (primary)
- True/false (for clear-cut facts)

DIFFICULTY LEVELS:
- Easy: Basic understanding of key concepts
- Medium: Implications and consequences
- Hard: Nuanced understanding and decision-making

Response format: Just the JSON with quiz structure. Do not include any other text or formatting.`

func buildSummaryPrompt(content string) string {
	return fmt.Sprintf(summaryPrompt, content)
}

func buildEntitiesPrompt(content string) string {
	return fmt.Sprintf(entitiesPrompt, content)
}

func buildImpactPrompt(content string) string {
	return fmt.Sprintf(impactPrompt, content)
}

func buildImportancePrompt(content, riskLevel string, userControl int) string {
	return fmt.Sprintf(importancePrompt, content, riskLevel, userControl)
}

func buildSegmentsPrompt(content string, overallSensitivity float64) string {
	return fmt.Sprintf(segmentsPrompt, content, overallSensitivity)
}

func buildQuizPrompt(title, content string, sensitivity float64) string {
	if strings.TrimSpace(title) == "" {
		title = "Untitled Section"
	}
	return fmt.Sprintf(quizPrompt, title, content, sensitivity)
}
