package llm

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")

// Flatten strips every line break from s. Nothing else is touched.
func Flatten(s string) string {
	return lineBreaks.Replace(s)
}

// FlattenAll flattens each completion in place order.
func FlattenAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Flatten(s)
	}
	return out
}
