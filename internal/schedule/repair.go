package schedule

import (
	"encoding/json"
	"regexp"
	"strings"
)

// FallbackJSON is the canned array substituted when repair cannot make
// the AI output parse. It uses the eventName alias, so the fallback
// also goes through the sanitizer's title resolution.
const FallbackJSON = `[{"day":"Monday","startTime":"09:00","endTime":"10:00","eventName":"Study Session"}]`

// RepairResult distinguishes "the AI output was salvaged" from "the AI
// output was discarded and replaced". Both carry valid JSON; callers
// and tests can tell the variants apart via FallbackUsed.
type RepairResult struct {
	JSON         string
	FallbackUsed bool
}

var (
	codeFenceRe   = regexp.MustCompile("(?i)```json|```")
	leadingJunkRe = regexp.MustCompile(`^[^{\[]+`)
	controlRe     = regexp.MustCompile(`[\x00-\x1F]+`)
	arrayStartRe  = regexp.MustCompile(`(?s)\[(.*)`)
)

// Repair turns raw generative-backend text into a best-effort valid
// JSON array. Each step is idempotent and skipped when inapplicable;
// the function never fails — if the cleaned text still does not parse
// it degrades to FallbackJSON. Repaired output may still carry
// semantically bad fields (unknown days, junk times, missing titles),
// so every element must go through SanitizeAIEvents afterwards.
func Repair(raw string) RepairResult {
	text := raw
	text = codeFenceRe.ReplaceAllString(text, "")
	text = leadingJunkRe.ReplaceAllString(text, "")
	text = controlRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "[") {
		if m := arrayStartRe.FindStringSubmatch(text); m != nil {
			text = "[" + m[1]
		} else {
			text = "[" + text
		}
	}
	if !strings.HasSuffix(text, "]") {
		// Lossy recovery: drop any trailing partial object. With no
		// closing brace at all this leaves a bare "]", which fails the
		// validity check below and degrades to the fallback.
		last := strings.LastIndex(text, "}")
		text = text[:last+1] + "]"
	}

	if !json.Valid([]byte(text)) {
		return RepairResult{JSON: FallbackJSON, FallbackUsed: true}
	}
	return RepairResult{JSON: text}
}
