package planner

import "strings"

// dangerousSubstrings is the closed set of prompt-injection markers replaced
// before a task description is embedded into a prompt or parameter map
// (§4.4 phase 4).
var dangerousSubstrings = []string{
	"rm -rf", "cat /etc", "<script>", "eval(", "system(", "exec(", "&&", "||",
}

var descriptionSanitizer = newDescriptionSanitizer()

func newDescriptionSanitizer() *strings.Replacer {
	pairs := make([]string, 0, len(dangerousSubstrings)*2)
	for _, s := range dangerousSubstrings {
		pairs = append(pairs, s, "[filtered]")
	}
	return strings.NewReplacer(pairs...)
}

// sanitizeDescription replaces every dangerous substring with "[filtered]".
func sanitizeDescription(description string) string {
	return descriptionSanitizer.Replace(description)
}
