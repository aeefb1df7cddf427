package codegen

import "strings"

// showCall is the display-trigger invocation removed from fragments. It is
// meaningless in headless execution and raises in the sandbox, which has
// no display surface.
const showCall = "fig.show()"

// importPrefixes are the statement keywords that mark a line as an import.
// The sandbox supplies its own pre-approved library handles, so imports
// are redundant and a vector for pulling in disallowed modules.
var importPrefixes = []string{"import", "from", "require("}

// Sanitize removes disallowed statement classes from a code fragment:
// every occurrence of the fig.show() call (substring-level, not
// statement-aware), then every line whose trimmed content begins with an
// import-style keyword. Stripped import lines are left as blank lines so
// the remaining lines keep their original positions. Sanitize is
// idempotent and never fails.
//
// Import detection is a syntactic line-prefix match, not a parse: a line
// inside a multi-line string that happens to start with "import" is
// stripped too. Known limitation; generated fragments are expected to be
// simple enough not to hit it.
func Sanitize(fragment string) string {
	fragment = strings.ReplaceAll(fragment, showCall, "")

	lines := strings.Split(fragment, "\n")
	for i, line := range lines {
		if isImportLine(line) {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// isImportLine reports whether the trimmed line begins with an
// import-style keyword.
func isImportLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range importPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
