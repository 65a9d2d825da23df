package analysis

import (
	"context"
	"time"
)

// DefaultMockDelay is the simulated processing latency of the offline analyzer.
const DefaultMockDelay = 1500 * time.Millisecond

const (
	mockInsights = "Visual design analysis reveals a modern, user-centric interface with clear information hierarchy, intuitive navigation patterns, and professional visual design. The interface demonstrates strong UX principles with accessible design patterns and responsive layout considerations."

	mockDesignAnalysis = "The design showcases contemporary UI patterns with clean typography, consistent spacing, and purposeful color usage. Key interface elements include streamlined navigation, prominent calls-to-action, well-organized content sections, and user-friendly form designs. The visual hierarchy guides users through optimal task completion flows."
)

// MockAnalyzer produces a fixed work-item hierarchy after a fixed delay. Its
// output depends only on the level and whether an image was supplied.
type MockAnalyzer struct {
	delay time.Duration
}

// NewMockAnalyzer returns an analyzer that waits delay before answering.
// Negative delays are treated as zero.
func NewMockAnalyzer(delay time.Duration) *MockAnalyzer {
	if delay < 0 {
		delay = 0
	}
	return &MockAnalyzer{delay: delay}
}

// Delay returns the simulated latency.
func (m *MockAnalyzer) Delay() time.Duration {
	return m.delay
}

// Analyze returns the mock result for level. Cancelling ctx cuts the delay
// short but a result is still produced.
func (m *MockAnalyzer) Analyze(ctx context.Context, level Level, hasImage bool) Result {
	m.wait(ctx)

	examination := "design pattern review"
	if hasImage {
		examination = "detailed visual examination"
	}
	result := Result{
		AnalysisDepth:     string(level),
		ExtractedInsights: mockInsights + " Analysis includes " + examination + ".",
		DesignAnalysis:    mockDesignAnalysis,
		UserFlows: []string{
			"User onboarding and account setup",
			"Primary navigation and content discovery",
			"Task completion and form submission",
			"Settings and profile management",
		},
		AccessibilityInsights: []string{
			"High contrast ratios for text readability",
			"Clear focus indicators for keyboard navigation",
			"Sufficient touch target sizes for mobile users",
			"Semantic structure for screen reader compatibility",
		},
		Stories: mockStories(),
	}
	if level.Includes(LevelEpic) {
		result.Epics = []WorkItem{mockEpic()}
	}
	if level.Includes(LevelFeature) {
		result.Features = []WorkItem{mockFeature()}
	}
	if level.Includes(LevelInitiative) {
		result.Initiatives = []WorkItem{mockInitiative()}
	}
	if level.Includes(LevelBusinessBrief) {
		brief := mockBusinessBrief()
		result.BusinessBrief = &brief
	}
	return result
}

func (m *MockAnalyzer) wait(ctx context.Context) {
	if m == nil || m.delay <= 0 {
		return
	}
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func mockStories() []WorkItem {
	return []WorkItem{
		{
			ID:                 "STORY-DESIGN-REV-001",
			Title:              "As a user, I want a clear navigation system",
			Description:        "Intuitive navigation interface extracted from design analysis",
			Category:           "navigation",
			Priority:           "high",
			AcceptanceCriteria: []string{"Navigation is clearly visible", "Menu items are logically organized", "Mobile navigation works properly"},
			BusinessValue:      "Enables users to easily find and access different sections of the application",
			WorkflowLevel:      string(LevelStory),
			StoryPoints:        3,
			Labels:             []string{"ui", "navigation"},
		},
		{
			ID:                 "STORY-DESIGN-REV-002",
			Title:              "As a user, I want responsive design across devices",
			Description:        "Mobile-responsive interface capabilities identified in design",
			Category:           "responsive-design",
			Priority:           "high",
			AcceptanceCriteria: []string{"Layout adapts to mobile screens", "Touch targets are appropriately sized", "Content remains readable"},
			BusinessValue:      "Ensures optimal user experience across all device types",
			WorkflowLevel:      string(LevelStory),
			StoryPoints:        5,
			Labels:             []string{"responsive", "mobile"},
		},
	}
}

func mockEpic() WorkItem {
	return WorkItem{
		ID:                 "EPIC-DESIGN-REV-001",
		Title:              "User Interface Implementation Epic",
		Description:        "Complete user interface development based on design specifications and user experience requirements",
		Category:           "ui-development",
		Priority:           "high",
		AcceptanceCriteria: []string{"All design elements implemented accurately", "User flows work as intended", "Responsive design functions properly"},
		BusinessValue:      "Delivers comprehensive user interface that matches design vision and user needs",
		WorkflowLevel:      string(LevelEpic),
		EstimatedEffort:    "Large",
		SprintEstimate:     6,
	}
}

func mockFeature() WorkItem {
	return WorkItem{
		ID:                 "FEAT-DESIGN-REV-001",
		Title:              "Interactive User Interface Feature",
		Description:        "User interface components and interaction patterns based on design analysis",
		Category:           "user-interface",
		Priority:           "high",
		AcceptanceCriteria: []string{"Modern, clean interface design", "Intuitive user interactions", "Consistent design system"},
		BusinessValue:      "Provides users with modern, engaging interface that drives user satisfaction",
		WorkflowLevel:      string(LevelFeature),
		EstimatedEffort:    "Medium",
		TargetRelease:      "v1.0",
	}
}

func mockInitiative() WorkItem {
	return WorkItem{
		ID:                 "INIT-DESIGN-REV-001",
		Title:              "User Experience Enhancement Initiative",
		Description:        "Comprehensive user experience improvement based on modern design principles and user-centered approach",
		Category:           "user-experience",
		Priority:           "high",
		AcceptanceCriteria: []string{"Improved user satisfaction scores", "Reduced task completion time", "Higher user engagement"},
		BusinessValue:      "Establishes superior user experience that differentiates the product and drives user retention",
		WorkflowLevel:      string(LevelInitiative),
		EstimatedEffort:    "Extra Large",
		StrategicAlignment: "User experience excellence",
	}
}

func mockBusinessBrief() BusinessBrief {
	return BusinessBrief{
		ID:                "BB-DESIGN-REV-001",
		Title:             "UI/UX Design Business Brief",
		Description:       "Comprehensive business context extracted from visual design analysis and user experience requirements",
		BusinessObjective: "Deliver exceptional user experience through modern, intuitive interface design that drives user engagement and business outcomes",
		QuantifiableBusinessOutcomes: []string{
			"Increase user engagement by 40%",
			"Improve task completion rates by 25%",
			"Reduce user onboarding time by 50%",
			"Achieve 95% user satisfaction score",
		},
	}
}
