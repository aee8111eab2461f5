package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/monsterswithink/dazzle-resume/internal/enrich"
	"github.com/monsterswithink/dazzle-resume/internal/logger"
	"github.com/monsterswithink/dazzle-resume/internal/resume"

	"google.golang.org/genai"
)

// ErrGenerationFailed wraps any model-side failure.
var ErrGenerationFailed = errors.New("ai generation failed")

const modelName = "gemini-2.5-flash"

// Suggester generates resume improvement suggestions from the synced
// profile via the Gemini API.
type Suggester struct {
	client *genai.Client
}

func New(ctx context.Context, apiKey string) (*Suggester, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key missing")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Suggester{client: client}, nil
}

// Suggestions produces a summary rewrite and a skills list for the
// given profile. Results come back unapplied; the edit surface flips
// the applied flag.
func (s *Suggester) Suggestions(ctx context.Context, p *enrich.Profile) ([]resume.AISuggestion, error) {

	summary, err := s.generate(ctx, summaryPrompt(p))
	if err != nil {
		return nil, err
	}

	skills, err := s.generate(ctx, skillsPrompt(p))
	if err != nil {
		return nil, err
	}

	logger.Info("ai suggestions generated", map[string]any{
		"summary_len": len(summary),
		"skills_len":  len(skills),
	})

	return []resume.AISuggestion{
		{Section: "summary", Suggestion: strings.TrimSpace(summary)},
		{Section: "skills", Suggestion: strings.TrimSpace(skills)},
	}, nil
}

func (s *Suggester) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}

func summaryPrompt(p *enrich.Profile) string {
	var b strings.Builder
	b.WriteString("Based on this LinkedIn profile, write a compelling 2-3 sentence professional summary for a resume.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", p.FullName)
	fmt.Fprintf(&b, "Headline: %s\n", p.Headline)
	fmt.Fprintf(&b, "Current summary: %s\n", p.Summary)
	for _, e := range p.Experiences {
		fmt.Fprintf(&b, "Experience: %s at %s. %s\n", e.Title, e.Company, e.Description)
	}
	for _, e := range p.Education {
		fmt.Fprintf(&b, "Education: %s, %s at %s\n", e.DegreeName, e.FieldOfStudy, e.School)
	}
	b.WriteString("\nReturn only the summary text.")
	return b.String()
}

func skillsPrompt(p *enrich.Profile) string {
	var b strings.Builder
	b.WriteString("Based on this professional profile, suggest 8-10 relevant technical and soft skills.\n\n")
	fmt.Fprintf(&b, "Headline: %s\n", p.Headline)
	for _, e := range p.Experiences {
		fmt.Fprintf(&b, "Experience: %s at %s\n", e.Title, e.Company)
	}
	b.WriteString("\nReturn only a comma-separated list of skills.")
	return b.String()
}
