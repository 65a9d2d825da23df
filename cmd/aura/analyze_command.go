package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aura/internal/analysis"
	"aura/internal/prompt"
)

type analyzeOptions struct {
	level           string
	inputType       string
	designData      string
	figmaURL        string
	files           []string
	image           string
	real            bool
	noUserFlows     bool
	noAccessibility bool
	save            bool
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Reverse engineer a design into work items",
		Long: `Reverse engineer a design into work items at the requested level.

Without --real the offline analyzer answers. With --real the LLM gateway is
called using the reverse-engineering design selection; gateway failures fall
back to offline results, reported as "mock-fallback".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildAnalyzeRequest(opts)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.cliLogger()
			resolver, _, err := ctx.openResolver(cmd.Context(), logger)
			if err != nil {
				return err
			}

			service := buildDesignService(cfg, resolver, logger)
			result, err := service.ReverseEngineerDesign(cmd.Context(), req)
			if err != nil {
				return err
			}

			var saved any
			if opts.save {
				store, err := ctx.openStore(cmd.Context())
				if err != nil {
					return err
				}
				summary, err := store.ImportAnalysis(cmd.Context(), result)
				if err != nil {
					return fmt.Errorf("save analysis: %w", err)
				}
				saved = summary
				if !ctx.jsonOutput() {
					defer fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %d initiative(s)%s\n", len(summary.InitiativeIDs), briefSuffix(summary.BusinessBriefID))
				}
			}

			if ctx.jsonOutput() {
				if saved != nil {
					return writeJSON(cmd, map[string]any{"data": result, "saved": saved})
				}
				return writeJSON(cmd, result)
			}
			renderAnalysis(cmd, result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.level, "level", "l", string(analysis.LevelStory), "Analysis level: story, epic, feature, initiative, business-brief")
	flags.StringVar(&opts.inputType, "input-type", "", "Input type: figma, image, upload (inferred when omitted)")
	flags.StringVarP(&opts.designData, "design", "d", "", "Design description text")
	flags.StringVar(&opts.figmaURL, "figma-url", "", "Figma file URL")
	flags.StringArrayVarP(&opts.files, "file", "f", nil, "Design file to include (repeatable)")
	flags.StringVar(&opts.image, "image", "", "Design image to analyze")
	flags.BoolVar(&opts.real, "real", false, "Call the LLM gateway instead of the offline analyzer")
	flags.BoolVar(&opts.noUserFlows, "no-user-flows", false, "Skip user flow extraction")
	flags.BoolVar(&opts.noAccessibility, "no-accessibility", false, "Skip accessibility insights")
	flags.BoolVar(&opts.save, "save", false, "Store the resulting business brief and initiatives")
	return cmd
}

func buildAnalyzeRequest(opts analyzeOptions) (analysis.Request, error) {
	level, err := analysis.ParseLevel(opts.level)
	if err != nil {
		return analysis.Request{}, err
	}

	inputType := prompt.InputType(strings.ToLower(strings.TrimSpace(opts.inputType)))
	if inputType == "" {
		switch {
		case opts.image != "":
			inputType = prompt.InputImage
		case opts.figmaURL != "":
			inputType = prompt.InputFigma
		default:
			inputType = prompt.InputUpload
		}
	}

	req := analysis.NewRequest(inputType, opts.designData, level)
	req.FigmaURL = strings.TrimSpace(opts.figmaURL)
	req.UseRealLLM = opts.real
	req.ExtractUserFlows = !opts.noUserFlows
	req.IncludeAccessibility = !opts.noAccessibility

	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("read design file: %w", err)
		}
		req.Files = append(req.Files, prompt.File{Filename: filepath.Base(path), Content: string(data)})
	}
	if opts.image != "" {
		data, err := os.ReadFile(opts.image)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("read image: %w", err)
		}
		req.ImageData = base64.StdEncoding.EncodeToString(data)
		req.ImageType = http.DetectContentType(data)
	}
	if req.DesignData == "" {
		req.DesignData = describeInputs(req)
	}
	return req, nil
}

// describeInputs fills designData when the caller only supplied files or an
// image.
func describeInputs(req analysis.Request) string {
	var parts []string
	for _, file := range req.Files {
		parts = append(parts, "file "+file.Filename)
	}
	if req.ImageData != "" {
		parts = append(parts, "image ("+req.ImageType+")")
	}
	if req.FigmaURL != "" {
		parts = append(parts, "figma "+req.FigmaURL)
	}
	if len(parts) == 0 {
		return "No design description provided."
	}
	return "Design inputs: " + strings.Join(parts, ", ")
}

func renderAnalysis(cmd *cobra.Command, result analysis.Result) {
	out := cmd.OutOrStdout()
	mode := result.AnalysisMode
	if mode == "" {
		mode = "ok"
	}
	fmt.Fprintf(out, "Analysis depth: %s (%s)\n", prompt.LevelLabel(result.AnalysisDepth), mode)
	if result.Degraded() {
		fmt.Fprintf(out, "Fallback reason: %s\n", result.FallbackReason)
	}
	if result.BusinessBrief != nil {
		fmt.Fprintf(out, "Business brief: %s\n", result.BusinessBrief.Title)
	}
	fmt.Fprintln(out)

	var rows [][]string
	add := func(level string, items []analysis.WorkItem) {
		for _, item := range items {
			rows = append(rows, []string{level, item.ID, item.Title, item.Priority, estimate(item)})
		}
	}
	add("initiative", result.Initiatives)
	add("feature", result.Features)
	add("epic", result.Epics)
	add("story", result.Stories)
	fmt.Fprintln(out, renderTable(
		[]string{"Level", "ID", "Title", "Priority", "Estimate"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
		colorEnabled(out),
	))
	writeList(out, "User flows", result.UserFlows)
	writeList(out, "Accessibility", result.AccessibilityInsights)
}

func estimate(item analysis.WorkItem) string {
	switch {
	case item.StoryPoints > 0:
		return strconv.Itoa(item.StoryPoints) + " pts"
	case item.SprintEstimate > 0:
		return strconv.Itoa(item.SprintEstimate) + " sprints"
	case item.EstimatedEffort != "":
		return item.EstimatedEffort
	case item.TargetRelease != "":
		return item.TargetRelease
	default:
		return ""
	}
}

func writeList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

func briefSuffix(id string) string {
	if id == "" {
		return ""
	}
	return " under business brief " + id
}
