package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/career_summary.md
var careerSummaryPromptRaw string

// CareerSummaryTemplate is the parsed prompt template for career summaries.
// Parsed once at package init; reused on every request.
var CareerSummaryTemplate = template.Must(template.New("career_summary").Parse(careerSummaryPromptRaw))

// SystemInstruction frames every career summary request.
const SystemInstruction = "You are an expert career advisor for software engineers. " +
	"Provide personalized, actionable, and encouraging career advice. " +
	"Be realistic about timelines and growth potential. " +
	"Format your response as valid JSON with all required fields."
