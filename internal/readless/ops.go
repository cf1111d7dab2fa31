package readless

import "strings"

// Operations understood by the processing endpoint.
const (
	OpSummarize      = "summarize"
	OpSuggest        = "suggest"
	OpBullets        = "bullets"
	OpOutline        = "outline"
	OpExtractive     = "extractive"
	OpKeywords       = "keywords"
	OpTLDR           = "tldr"
	OpTitle          = "title"
	OpQA             = "qa"
	OpExpand         = "expand"
	OpShorten        = "shorten"
	OpRewriteFormal  = "rewrite:formal"
	OpRewriteSimple  = "rewrite:simple"
	OpDetectLanguage = "detect-language"

	// TranslatePrefix is followed by an ISO code or language name,
	// e.g. "translate:si" or "translate:Spanish".
	TranslatePrefix = "translate:"
)

// Operations lists every fixed operation, in catalog order.
var Operations = []string{
	OpSummarize, OpSuggest, OpBullets, OpOutline, OpExtractive, OpKeywords,
	OpTLDR, OpTitle, OpQA, OpExpand, OpShorten, OpRewriteFormal,
	OpRewriteSimple, OpDetectLanguage,
}

// KnownOperation reports whether op (already normalized) is in the catalog,
// including parameterized translate operations with a non-empty target.
func KnownOperation(op string) bool {
	if target, ok := strings.CutPrefix(op, TranslatePrefix); ok {
		return strings.TrimSpace(target) != ""
	}
	for _, known := range Operations {
		if op == known {
			return true
		}
	}
	return false
}
