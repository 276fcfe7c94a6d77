package parser

import (
	"strings"
	"testing"
)

func TestTextParserBasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(input), "policy.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextParserEmptyInput(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestTextParserSingleLine(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader("Hello world"), "single.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", got)
	}
}

func TestTextParserMultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Para one.\n\nPara two." {
		t.Errorf("got %q", got)
	}
}

func TestTextParserWhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Para one.\n\nPara two." {
		t.Errorf("got %q", got)
	}
}

func TestForFileSelection(t *testing.T) {
	cases := []struct {
		filename  string
		supported bool
	}{
		{"policy.txt", true},
		{"policy.md", true},
		{"policy.markdown", true},
		{"policy.html", true},
		{"policy.htm", true},
		{"policy.pdf", true},
		{"policy.docx", true},
		{"policy.exe", false},
		{"policy", false},
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			if got := IsSupportedExtension(tc.filename); got != tc.supported {
				t.Errorf("IsSupportedExtension(%q) = %v", tc.filename, got)
			}
			_, err := ForFile(tc.filename, Options{})
			if tc.supported && err != nil {
				t.Errorf("ForFile(%q): %v", tc.filename, err)
			}
			if !tc.supported && err == nil {
				t.Errorf("ForFile(%q) should fail", tc.filename)
			}
		})
	}
}
