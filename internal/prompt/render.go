// Package prompt renders prompt templates and cleans model output.
package prompt

import (
	"sort"
	"strings"
)

// Render replaces every {name} placeholder in template with the pretty-printed
// JSON of vars[name]. Placeholders without a variable are left as is.
// Substituted text is never scanned again.
func Render(template string, vars Variables) string {
	if len(vars) == 0 || template == "" {
		return template
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, "{"+key+"}", vars[key].Render())
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Placeholders lists the distinct {name} tokens found in template, in order of first appearance.
func Placeholders(template string) []string {
	var (
		names []string
		seen  = map[string]struct{}{}
	)
	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(rest[start+1:], '}')
		if end < 0 {
			return names
		}
		name := rest[start+1 : start+1+end]
		if inner := strings.LastIndexByte(name, '{'); inner >= 0 {
			name = name[inner+1:]
		}
		if name != "" && !strings.ContainsAny(name, " \n\t\"") {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
		rest = rest[start+1+end+1:]
	}
}
