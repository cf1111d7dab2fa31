package processor

import (
	"fmt"
	"strings"

	"github.com/lotas/readless/internal/readless"
)

// separator sits between the instructions and the user's text.
const separator = "\n\n---\n"

var instructions = map[string]string{
	readless.OpSummarize: `Summarize the following text in 2-4 concise sentences.
Keep only essential facts, results, and implications.
Remove filler, anecdotes, and subjective language.`,

	readless.OpSuggest: `Based on the material, list closely related topics and targeted further reading.
Focus on advanced areas and canonical sources. Avoid generic, low-value items.
Output as a short bulleted list.`,

	readless.OpBullets: `Produce 5-8 crisp bullets capturing the core ideas and actions.
Each bullet <= 20 words. No preface, no summary line.`,

	readless.OpOutline: `Create a hierarchical outline with numbered headings and subpoints (max depth 2).
Use compact phrasing. No paragraphs.`,

	readless.OpExtractive: `Return the 3-5 most informative verbatim quotes (<=120 characters each) from the text.
Do not paraphrase. No commentary. One quote per line.`,

	readless.OpKeywords: `Return 10-15 comma-separated keywords that best index this text.
No sentences, no numbering, no hashtags.`,

	readless.OpTLDR: `Write a single-sentence TL;DR (<=25 words). No preface, no label.`,

	readless.OpTitle: `Propose 3 ultra-concise titles (<=8 words each), line-separated.
No subtitles, no numbering.`,

	readless.OpQA: `Generate 5 Q&A pairs derived strictly from the text.
Format:
Q: ...
A: ...
Keep each answer <= 30 words.`,

	readless.OpExpand: `Expand the text into 1-2 tight paragraphs.
Preserve meaning, remove redundancy, improve flow. No new facts.`,

	readless.OpShorten: `Shorten the text by about 50% while preserving all critical information.
Keep terminology intact. Output only the shortened version.`,

	readless.OpRewriteFormal: `Rewrite the text in a formal, objective, concise tone suitable for academic or official documents.
Remove slang, hedging, and verbosity. Output only the rewritten text.`,

	readless.OpRewriteSimple: `Rewrite the text for a grade-6 reading level.
Use short sentences, common words, and direct structure. Output only the rewritten text.`,

	readless.OpDetectLanguage: `Read the text and output only:
<Language Name> (<ISO-639-1 code>)
Nothing else.`,
}

const translateInstructions = `Translate the text into the target language exactly, preserving meaning and names.
Output only the translation; no preface, no notes.
Target language: %s`

// BuildPrompt returns the model prompt for a normalized operation.
// Unknown operations fall back to a dense summary.
func BuildPrompt(op, content string) string {
	if target, ok := strings.CutPrefix(op, readless.TranslatePrefix); ok {
		if target = strings.TrimSpace(target); target != "" {
			return fmt.Sprintf(translateInstructions, target) + separator + content + "\n"
		}
	}
	inst, ok := instructions[op]
	if !ok {
		inst = instructions[readless.OpSummarize]
	}
	return inst + separator + content + "\n"
}

// summarizeOps are the only operations the legacy summarize route accepts.
var summarizeOps = map[string]bool{
	readless.OpSummarize: true,
	readless.OpSuggest:   true,
}

// BuildSummarizePrompt is BuildPrompt restricted to summarizeOps.
func BuildSummarizePrompt(op, content string) (string, error) {
	if !summarizeOps[op] {
		return "", fmt.Errorf("unknown operation: %s", op)
	}
	return BuildPrompt(op, content), nil
}
