package analyzer

import (
	"math"

	"github.com/policylens/policylens/internal/policy"
)

// aggregate computes document-level metrics from the surviving sections.
// Callers guarantee the slice is non-empty.
func aggregate(doc *policy.Document, sections []policy.Section) {
	n := float64(len(sections))

	var (
		riskTotal         float64
		transparencyTotal float64
		controlTotal      float64
		wordTotal         int
	)
	for _, s := range sections {
		riskTotal += riskScore(s.Impact.RiskLevel)
		transparencyTotal += float64(s.Impact.TransparencyScore)
		controlTotal += float64(s.Impact.UserControl)
		wordTotal += s.WordCount

		if s.Impact.SensitivityScore >= 8.0 {
			doc.HighRiskSections++
		}
		switch s.Impact.EngagementLevel {
		case policy.EngagementInteractive, policy.EngagementQuiz:
			doc.InteractiveSections++
		}
	}

	avgRisk := riskTotal / n
	switch {
	case avgRisk >= 2.5:
		doc.OverallRiskLevel = policy.RiskHigh
	case avgRisk >= 1.5:
		doc.OverallRiskLevel = policy.RiskMedium
	default:
		doc.OverallRiskLevel = policy.RiskLow
	}

	avgTransparency := transparencyTotal / n
	avgControl := controlTotal / n
	doc.UserFriendliness = int(math.Round((avgTransparency + avgControl) / 2))

	doc.OverallSensitivity = round1(weightedAverage(sections, func(s policy.Section) float64 {
		return s.Impact.SensitivityScore
	}))
	doc.OverallPrivacyImpact = round1(weightedAverage(sections, func(s policy.Section) float64 {
		return s.Impact.PrivacyImpactScore
	}))

	doc.ComplianceScore = round1(((avgTransparency + avgControl) / 2) * 2)

	avgWords := float64(wordTotal) / n
	readability := avgTransparency*2 - math.Min(2, avgWords/200)
	doc.ReadabilityScore = round1(math.Max(0, math.Min(10, readability)))

	doc.TotalWordCount = wordTotal
	doc.EstimatedReadingTime = readingMinutes(wordTotal)
}

func riskScore(level policy.RiskLevel) float64 {
	switch level {
	case policy.RiskHigh:
		return 3
	case policy.RiskLow:
		return 1
	default:
		return 2
	}
}

// weightedAverage weights each section's value by its importance score,
// falling back to an unweighted mean when every weight is zero.
func weightedAverage(sections []policy.Section, value func(policy.Section) float64) float64 {
	var weighted, totalWeight, plain float64
	for _, s := range sections {
		weighted += value(s) * s.ImportanceScore
		totalWeight += s.ImportanceScore
		plain += value(s)
	}
	if totalWeight == 0 {
		return plain / float64(len(sections))
	}
	return weighted / totalWeight
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// readingMinutes estimates reading time at 200 words per minute, minimum 1.
func readingMinutes(words int) int {
	mins := words / 200
	if mins < 1 {
		return 1
	}
	return mins
}
