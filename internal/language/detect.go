// Package language infers programming languages from file names and
// source text, and provides lightweight lexical analysis helpers used
// when assembling review prompts.
package language

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Unknown is returned when no language can be determined.
const Unknown = "code"

var extensionMap = map[string]string{
	".py":       "python",
	".pyw":      "python",
	".js":       "javascript",
	".mjs":      "javascript",
	".cjs":      "javascript",
	".jsx":      "javascript",
	".ts":       "typescript",
	".tsx":      "typescript",
	".java":     "java",
	".go":       "go",
	".rs":       "rust",
	".cpp":      "cpp",
	".cc":       "cpp",
	".cxx":      "cpp",
	".hpp":      "cpp",
	".c":        "c",
	".h":        "c",
	".rb":       "ruby",
	".php":      "php",
	".swift":    "swift",
	".kt":       "kotlin",
	".kts":      "kotlin",
	".cs":       "csharp",
	".scala":    "scala",
	".sh":       "bash",
	".bash":     "bash",
	".zsh":      "bash",
	".sql":      "sql",
	".yaml":     "yaml",
	".yml":      "yaml",
	".json":     "json",
	".xml":      "xml",
	".html":     "html",
	".css":      "css",
	".scss":     "scss",
	".sass":     "sass",
	".less":     "less",
	".md":       "markdown",
	".markdown": "markdown",
}

type languagePatterns struct {
	name     string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// Ordered so ties resolve the same way on every run.
var contentPatterns = []languagePatterns{
	{"python", compileAll(
		`(?m)^\s*def\s+\w+\s*\(`,
		`(?m)^\s*class\s+\w+`,
		`(?m)^\s*import\s+\w+`,
		`(?m)^\s*from\s+\w+\s+import`,
		`if\s+__name__\s*==\s*["']__main__["']`,
	)},
	{"javascript", compileAll(
		`(?m)^\s*const\s+\w+\s*=`,
		`(?m)^\s*let\s+\w+\s*=`,
		`(?m)^\s*function\s+\w+\s*\(`,
		`(?m)^\s*export\s+(default\s+)?`,
		`=>\s*\{`,
		`require\s*\(["']`,
	)},
	{"typescript", compileAll(
		`:\s*(string|number|boolean|any)\s*[;=)]`,
		`interface\s+\w+\s*\{`,
		`type\s+\w+\s*=`,
		`<\w+>\s*\(`,
	)},
	{"java", compileAll(
		`(?m)^\s*public\s+class\s+\w+`,
		`(?m)^\s*private\s+\w+\s+\w+`,
		`(?m)^\s*@\w+`,
		`System\.out\.println`,
	)},
	{"go", compileAll(
		`(?m)^\s*package\s+\w+`,
		`(?m)^\s*func\s+\w+\s*\(`,
		`(?m)^\s*import\s+\(`,
		`:=`,
	)},
	{"rust", compileAll(
		`(?m)^\s*fn\s+\w+\s*\(`,
		`(?m)^\s*let\s+mut\s+`,
		`(?m)^\s*impl\s+`,
		`(?m)^\s*use\s+\w+::`,
		`->\s*\w+`,
	)},
	{"cpp", compileAll(
		`#include\s*<`,
		`(?m)^\s*namespace\s+\w+`,
		`std::`,
		`(?m)^\s*template\s*<`,
	)},
	{"c", compileAll(
		`#include\s*<`,
		`(?m)^\s*int\s+main\s*\(`,
		`malloc\s*\(`,
		`printf\s*\(`,
	)},
	{"ruby", compileAll(
		`(?m)^\s*def\s+\w+`,
		`(?m)^\s*class\s+\w+\s*<`,
		`(?m)^\s*require\s+["']`,
		`\.each\s+do\s*\|`,
	)},
	{"php", compileAll(
		`<\?php`,
		`(?m)^\s*function\s+\w+\s*\(`,
		`\$\w+\s*=`,
	)},
	{"swift", compileAll(
		`(?m)^\s*func\s+\w+\s*\(`,
		`(?m)^\s*var\s+\w+:`,
		`(?m)^\s*let\s+\w+:`,
		`guard\s+let`,
	)},
	{"kotlin", compileAll(
		`(?m)^\s*fun\s+\w+\s*\(`,
		`(?m)^\s*val\s+\w+`,
		`(?m)^\s*var\s+\w+`,
		`(?m)^\s*data\s+class`,
	)},
}

// Detect identifies the language of code, preferring the filename
// extension and falling back to content heuristics. Returns Unknown
// when neither yields a match.
func Detect(code, filename string) string {
	if filename != "" {
		ext := strings.ToLower(filepath.Ext(filename))
		if lang, ok := extensionMap[ext]; ok {
			return lang
		}
	}

	best := Unknown
	bestScore := 0
	for _, lp := range contentPatterns {
		score := 0
		for _, p := range lp.patterns {
			if p.MatchString(code) {
				score++
			}
		}
		if score > bestScore {
			best = lp.name
			bestScore = score
		}
	}
	return best
}

var complexityKeywords = map[string][]string{
	"python":     {"if", "elif", "for", "while", "except", "and", "or"},
	"javascript": {"if", "else if", "for", "while", "catch", "&&", "||", "?"},
	"typescript": {"if", "else if", "for", "while", "catch", "&&", "||", "?"},
	"java":       {"if", "else if", "for", "while", "catch", "&&", "||", "?", "case"},
	"go":         {"if", "for", "case", "&&", "||"},
	"rust":       {"if", "else if", "for", "while", "match", "&&", "||"},
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

// Complexity estimates cyclomatic complexity by counting branch
// keywords. The baseline for any code is 1.
func Complexity(code, lang string) int {
	keywords, ok := complexityKeywords[lang]
	if !ok {
		keywords = complexityKeywords["python"]
	}

	complexity := 1
	for _, kw := range keywords {
		if isAlpha(kw) {
			re := regexp.MustCompile(`\b` + kw + `\b`)
			complexity += len(re.FindAllString(code, -1))
		} else {
			complexity += strings.Count(code, kw)
		}
	}
	return complexity
}

// Function marks where a function definition begins.
type Function struct {
	Name      string
	StartLine int
}

var functionPatterns = map[string]*regexp.Regexp{
	"python":     regexp.MustCompile(`^\s*def\s+(\w+)\s*\(`),
	"javascript": regexp.MustCompile(`(?:function\s+(\w+)|(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:function|\([^)]*\)\s*=>))`),
	"typescript": regexp.MustCompile(`(?:function\s+(\w+)|(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:function|\([^)]*\)\s*=>))`),
	"java":       regexp.MustCompile(`(?:public|private|protected)?\s*(?:static)?\s*\w+\s+(\w+)\s*\(`),
	"go":         regexp.MustCompile(`func\s+(?:\([^)]+\)\s+)?(\w+)\s*\(`),
	"rust":       regexp.MustCompile(`fn\s+(\w+)\s*[<(]`),
}

// Functions locates function definitions in code. Languages without a
// known pattern yield nil.
func Functions(code, lang string) []Function {
	pattern, ok := functionPatterns[lang]
	if !ok {
		return nil
	}

	var out []Function
	for i, line := range strings.Split(code, "\n") {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := "anonymous"
		for _, g := range m[1:] {
			if g != "" {
				name = g
				break
			}
		}
		out = append(out, Function{Name: name, StartLine: i + 1})
	}
	return out
}

// Sanitize strips NUL bytes and truncates overly long code from the
// middle, keeping the head and tail.
func Sanitize(code string, maxLength int) string {
	sanitized := strings.ReplaceAll(code, "\x00", "")
	if len(sanitized) <= maxLength {
		return sanitized
	}

	half := maxLength/2 - 50
	if half < 0 {
		half = 0
	}
	head := half
	for head > 0 && !utf8.RuneStart(sanitized[head]) {
		head--
	}
	tail := len(sanitized) - half
	for tail < len(sanitized) && !utf8.RuneStart(sanitized[tail]) {
		tail++
	}
	return sanitized[:head] +
		fmt.Sprintf("\n\n... (%d characters truncated) ...\n\n", len(code)-maxLength) +
		sanitized[tail:]
}

// LineAt returns the 1-based line of code, or "" when out of range.
func LineAt(code string, lineNumber int) string {
	lines := strings.Split(code, "\n")
	if lineNumber < 1 || lineNumber > len(lines) {
		return ""
	}
	return lines[lineNumber-1]
}
