package review

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/techn4r/ai-code-reviewer/internal/diff"
)

const systemPrompt = `You are an expert code reviewer with deep knowledge of software engineering best practices, security, performance optimization, and clean code principles.

Your role is to:
1. Identify bugs, security vulnerabilities, and potential runtime errors
2. Suggest performance improvements
3. Point out code style and maintainability issues
4. Recommend best practices and design patterns
5. Provide constructive, actionable feedback

Guidelines:
- Be specific: reference exact line numbers and variable names
- Be constructive: explain WHY something is an issue
- Be helpful: provide code examples for fixes
- Be balanced: acknowledge good code, not just problems
- Be prioritized: focus on important issues first

Always respond in valid JSON format with the following structure:
{
    "issues": [
        {
            "type": "bug|security|performance|style|maintainability|documentation|best_practice|type_error",
            "severity": "low|medium|high|critical",
            "line": <line_number>,
            "end_line": <optional_end_line>,
            "message": "Clear description of the issue",
            "suggestion": "How to fix it",
            "code_suggestion": "Optional code snippet showing the fix"
        }
    ],
    "positive_feedback": [
        "Things done well in the code"
    ],
    "summary": "Brief overall assessment"
}`

// ruleDescriptions expands configured rule keys into reviewer
// instructions. Unknown keys are title-cased as-is.
var ruleDescriptions = map[string]string{
	"check_types":        "Verify type hints are correct and complete",
	"docstring_required": "All public functions must have docstrings",
	"max_complexity":     "Flag functions with high cyclomatic complexity",
	"prefer_const":       "Prefer const over let for unchanging variables",
	"no_var":             "Disallow var, use let/const instead",
	"no_any":             "Avoid using 'any' type in TypeScript",
	"error_handling":     "Ensure proper error handling",
	"null_safety":        "Check for potential null/undefined issues",
}

// PromptInput carries everything needed to build a whole-file review
// prompt.
type PromptInput struct {
	Code     string
	Language string
	Context  string
	Mode     Mode
	Rules    map[string]bool
}

// DiffPromptInput carries everything needed to build a diff review
// prompt.
type DiffPromptInput struct {
	FilePath string
	Hunks    []diff.Hunk
	Context  string
	Mode     Mode
}

// PromptBuilder assembles review prompts.
type PromptBuilder struct {
	titler cases.Caser
}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{titler: cases.Title(language.English)}
}

// SystemPrompt returns the instruction block sent with every request.
func (b *PromptBuilder) SystemPrompt() string {
	return systemPrompt
}

// BuildReviewPrompt renders a prompt asking for a review of a full
// code block, with line numbers so the provider can reference them.
func (b *PromptBuilder) BuildReviewPrompt(in PromptInput) string {
	var parts []string

	parts = append(parts,
		fmt.Sprintf("Please review the following %s code:\n", in.Language),
		"```"+in.Language,
		addLineNumbers(in.Code),
		"```\n",
	)

	if in.Context != "" {
		parts = append(parts, fmt.Sprintf("\nContext: %s\n", in.Context))
	}

	if len(in.Rules) > 0 {
		parts = append(parts, "\nAdditional rules to check:")
		for _, rule := range sortedRuleKeys(in.Rules) {
			if in.Rules[rule] {
				parts = append(parts, "- "+b.describeRule(rule))
			}
		}
		parts = append(parts, "")
	}

	if instructions := modeInstructions(in.Mode); instructions != "" {
		parts = append(parts, instructions)
	}

	parts = append(parts, "\nProvide your review in JSON format as specified in the system prompt.")

	return strings.Join(parts, "\n")
}

// BuildDiffReviewPrompt renders a prompt covering the hunks of one
// changed file, asking for issues against new-file line numbers.
func (b *PromptBuilder) BuildDiffReviewPrompt(in DiffPromptInput) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Please review the following changes to `%s`:\n", in.FilePath))

	for i, h := range in.Hunks {
		parts = append(parts, fmt.Sprintf("\n### Change %d (lines %d-%d):", i+1, h.NewStart, h.NewStart+h.NewCount))
		if h.Header != "" {
			parts = append(parts, "Function/Class: "+h.Header)
		}
		parts = append(parts, "```diff", h.Render(), "```")
	}

	if in.Context != "" {
		parts = append(parts, "\n### Full File Context:", "```", in.Context, "```")
	}

	parts = append(parts,
		"\nFocus on the ADDED lines (+ prefix). Report line numbers from the NEW file version.")

	if instructions := modeInstructions(in.Mode); instructions != "" {
		parts = append(parts, instructions)
	}

	parts = append(parts, "\nProvide your review in JSON format as specified in the system prompt.")

	return strings.Join(parts, "\n")
}

func (b *PromptBuilder) describeRule(rule string) string {
	if desc, ok := ruleDescriptions[rule]; ok {
		return desc
	}
	return b.titler.String(strings.ReplaceAll(rule, "_", " "))
}

// addLineNumbers right-aligns 1-based line numbers next to each line.
func addLineNumbers(code string) string {
	lines := strings.Split(code, "\n")
	width := len(fmt.Sprint(len(lines)))

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%*d | %s", width, i+1, line)
	}
	return sb.String()
}

// sortedRuleKeys keeps prompt output stable run to run.
func sortedRuleKeys(rules map[string]bool) []string {
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func modeInstructions(mode Mode) string {
	switch mode {
	case ModeQuick:
		return "\nMode: QUICK REVIEW\nFocus only on critical bugs and security issues. Skip minor style suggestions."
	case ModeStandard:
		return "\nMode: STANDARD REVIEW\nProvide a balanced review covering bugs, security, performance, and important style issues."
	case ModeDeep:
		return "\nMode: DEEP REVIEW\n" +
			"Perform a thorough analysis. Include:\n" +
			"- All potential bugs and edge cases\n" +
			"- Security vulnerabilities\n" +
			"- Performance optimizations\n" +
			"- Code style and maintainability\n" +
			"- Design pattern suggestions\n" +
			"- Test coverage recommendations"
	default:
		return ""
	}
}
