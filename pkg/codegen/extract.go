package codegen

import "strings"

// codeFenceTags are the fence tags recognized as explicit code blocks,
// checked in order.
var codeFenceTags = []string{"```javascript", "```js"}

// ExtractCode pulls a single code fragment out of a free-text model
// response. A fence explicitly tagged as code wins; otherwise the first
// untagged fence is used; otherwise the whole response is the fragment.
// The result is trimmed of surrounding whitespace. This is a best-effort
// heuristic, not a parser: no syntax validation is performed and the
// function never fails.
//
// If multiple fenced blocks exist, only the first is used.
func ExtractCode(response string) string {
	for _, tag := range codeFenceTags {
		if code, ok := cutFence(response, tag); ok {
			return code
		}
	}
	if code, ok := cutFence(response, "```"); ok {
		return code
	}
	return strings.TrimSpace(response)
}

// cutFence returns the trimmed text between the first occurrence of the
// opening marker and the next closing ``` marker. A tagged marker must be
// followed by a line break or space so "```js" does not match "```json".
func cutFence(response, open string) (string, bool) {
	idx := strings.Index(response, open)
	if idx < 0 {
		return "", false
	}
	rest := response[idx+len(open):]
	if open != "```" && rest != "" && rest[0] != '\n' && rest[0] != '\r' && rest[0] != ' ' {
		// Tag is a prefix of a longer word; try past this occurrence.
		if code, ok := cutFence(rest, open); ok {
			return code, true
		}
		return "", false
	}
	code, _, _ := strings.Cut(rest, "```")
	return strings.TrimSpace(code), true
}
