package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InputType identifies where the design payload came from.
type InputType string

const (
	InputFigma  InputType = "figma"
	InputImage  InputType = "image"
	InputUpload InputType = "upload"
)

// File is one uploaded design file.
type File struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Inputs carries everything the user prompt renders.
type Inputs struct {
	InputType            InputType
	FigmaURL             string
	DesignData           string
	ImageData            string
	ImageType            string
	Files                []File
	Level                string
	ExtractUserFlows     bool
	IncludeAccessibility bool
}

var titleCaser = cases.Title(language.English)

// LevelLabel renders a level id such as "business-brief" as "Business Brief".
func LevelLabel(level string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(level), "-", " "))
}

const systemTemplate = `You are a senior Product Owner who reverse engineers visual designs into business requirements.

Every requirement you write must be clear, unambiguous, concise, testable, understandable by technical and non-technical readers, valuable to users and the business, and complete enough to implement.

ANALYSIS APPROACH:
- Visual design analysis: derive functionality from layouts, components, navigation, and information architecture.
- User journey mapping: derive workflows and interaction patterns from visual cues.
- Component translation: turn forms, buttons, navigation, and content areas into requirements with acceptance criteria.
- Business value: connect design elements to measurable outcomes.

WORK ITEM HIERARCHY:
- Business Brief: strategic context and high-level objectives
- Initiative: large business capabilities and measurable outcomes
- Feature: user-facing capabilities that deliver value
- Epic: related stories that achieve a feature goal
- Story: implementable user requirements with acceptance criteria

Base the analysis on what the supplied design actually shows, not on generic UI patterns.

REQUESTED LEVEL: %s (%s)
Include work items for the requested level and every level below it. Always include stories.

Respond with a single JSON object containing analysisDepth, extractedInsights, designAnalysis, userFlows, accessibilityInsights, stories, and, when the level calls for them, epics, features, initiatives, and businessBrief.`

// SystemPrompt returns the role and rubric prompt for level. The output
// depends only on level.
func SystemPrompt(level string) string {
	return fmt.Sprintf(systemTemplate, LevelLabel(level), strings.TrimSpace(level))
}

var instructions = []string{
	"Identify the primary business domain from visual branding and content",
	"Extract user roles and permissions from interface access patterns",
	"Map interface components to functional requirements (forms to data entry, buttons to actions)",
	"Identify user workflows from navigation and interaction patterns",
	"Extract business rules from form validation and UI constraints",
	"Identify integration points from external service indicators",
	"Analyze accessibility features and responsive design patterns",
	"Generate work items based on actual interface functionality",
}

// SourceLine describes the design source for the given input kind.
func SourceLine(in Inputs) string {
	switch in.InputType {
	case InputFigma:
		return "Figma Design URL: " + in.FigmaURL
	case InputImage:
		return "Design Image Analysis"
	default:
		return "Multiple Design Files Analysis"
	}
}

// ScopeLine renders the level and the two analysis toggles as sentences.
func ScopeLine(in Inputs) string {
	parts := []string{"Analysis Level: " + in.Level}
	if in.ExtractUserFlows {
		parts = append(parts, "Extract user flows and interaction patterns")
	} else {
		parts = append(parts, "Focus on static design elements")
	}
	if in.IncludeAccessibility {
		parts = append(parts, "Include accessibility analysis based on visual design")
	} else {
		parts = append(parts, "Focus only on functional requirements")
	}
	return strings.Join(parts, ". ")
}

// UserPrompt assembles the request-specific prompt.
func UserPrompt(in Inputs) string {
	var b strings.Builder
	if in.ImageData != "" {
		b.WriteString("I have provided a design image to reverse engineer into business requirements. Examine it carefully and extract work items from the interface elements, user flows, and business functionality you can identify.")
	} else {
		fmt.Fprintf(&b, "Analyze the provided design information and extract work items at the %s level.", in.Level)
	}
	b.WriteString("\n\nSOURCE: ")
	b.WriteString(SourceLine(in))
	b.WriteString("\nANALYSIS SCOPE: ")
	b.WriteString(ScopeLine(in))
	b.WriteString("\n")

	if len(in.Files) > 0 {
		b.WriteString("\nDESIGN FILES:\n")
		for i, file := range in.Files {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "=== %s ===\nFile Type: Image/Design File\nContent: Base64 encoded design image\n", file.Filename)
		}
	}

	b.WriteString("\nDESIGN INFORMATION:\n")
	b.WriteString(in.DesignData)
	b.WriteString("\n\nVISUAL ANALYSIS INSTRUCTIONS:\n")
	for i, line := range instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\nReturn the analysis as a valid JSON object following the structure described in the system prompt.")
	return b.String()
}
