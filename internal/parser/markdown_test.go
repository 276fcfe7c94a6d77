package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParserHeadingsBecomeParagraphs(t *testing.T) {
	input := `# Privacy Policy

Intro text.

## Data Collection

We collect account details.

## Data Sharing

We share with partners.
`
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "policy.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paragraphs := strings.Split(got, "\n\n")
	want := []string{
		"Privacy Policy",
		"Intro text.",
		"Data Collection",
		"We collect account details.",
		"Data Sharing",
		"We share with partners.",
	}
	if len(paragraphs) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(paragraphs), got)
	}
	for i, w := range want {
		if paragraphs[i] != w {
			t.Errorf("paragraph %d = %q, want %q", i, paragraphs[i], w)
		}
	}
}

func TestMarkdownParserNoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Just some plain text.") || !strings.Contains(got, "Another paragraph here.") {
		t.Errorf("paragraphs missing from output: %q", got)
	}
}

func TestMarkdownParserCodeBlocksKept(t *testing.T) {
	input := "# Contact\n\nReach us at:\n\n```\nprivacy@example.com\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "contact.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "privacy@example.com") {
		t.Errorf("code block content missing: %q", got)
	}
	if !strings.Contains(got, "More text after code.") {
		t.Errorf("post-code text missing: %q", got)
	}
}

func TestMarkdownParserEmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
