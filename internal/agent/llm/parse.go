package llm

import (
	"regexp"
	"strings"

	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// Model replies are JSON in theory and markdown-wrapped almost-JSON in
// practice. The patterns below repair the usual damage: code fences,
// trailing commas, comments, unquoted keys and prose around the payload.
var (
	codeFenceRegex = regexp.MustCompile("(?s)```(?:json|javascript|js)?\\s*\\n?([\\s\\S]*?)\\n?```")

	trailingCommaRegex     = regexp.MustCompile(`,(\s*[}\]])`)
	unquotedKeyRegex       = regexp.MustCompile(`([{,]\s*)([a-zA-Z_$][a-zA-Z0-9_$]*)\s*:`)
	singleLineCommentRegex = regexp.MustCompile(`(?m)//.*$`)
	multiLineCommentRegex  = regexp.MustCompile(`(?s)/\*.*?\*/`)

	jsonObjectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	jsonArrayRegex  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// Parse decodes a model reply into T, trying progressively more invasive
// repair strategies: direct parse, code fence removal, syntax cleanup,
// then extraction of an embedded JSON object or array.
func Parse[T any](text string) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return zero, errors.ErrModelOutput.WithMessage("empty model reply")
	}

	if v, err := tryParse[T](trimmed); err == nil {
		return v, nil
	}

	unfenced := removeCodeFences(trimmed)
	if unfenced != trimmed {
		if v, err := tryParse[T](unfenced); err == nil {
			return v, nil
		}
	}

	cleaned := cleanupJSON(unfenced)
	if v, err := tryParse[T](cleaned); err == nil {
		return v, nil
	}

	if extracted := extractJSON(cleaned); extracted != "" {
		if v, err := tryParse[T](extracted); err == nil {
			return v, nil
		}
	}

	return zero, errors.ErrModelOutput.WithMessagef("model reply is not parseable JSON: %s", snippet(text, 120))
}

func tryParse[T any](text string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(text), &v)
	return v, err
}

func removeCodeFences(text string) string {
	cleaned := codeFenceRegex.ReplaceAllString(text, "$1")
	if strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`") {
		cleaned = strings.Trim(cleaned, "`")
	}
	return strings.TrimSpace(cleaned)
}

// cleanupJSON fixes trailing commas, unquoted keys and stray comments.
// Single quotes stay untouched since rewriting them would corrupt valid
// strings containing apostrophes.
func cleanupJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = trailingCommaRegex.ReplaceAllString(cleaned, "$1")
	cleaned = unquotedKeyRegex.ReplaceAllString(cleaned, `$1"$2":`)
	cleaned = singleLineCommentRegex.ReplaceAllString(cleaned, "")
	cleaned = multiLineCommentRegex.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// extractJSON pulls the first JSON object or array out of surrounding
// prose. The leading-character check keeps array replies from collapsing
// into their first element.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return jsonArrayRegex.FindString(text)
	}
	if match := jsonObjectRegex.FindString(text); match != "" {
		return match
	}
	return jsonArrayRegex.FindString(text)
}

func snippet(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
