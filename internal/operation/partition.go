package operation

import (
	"regexp"
	"strings"
)

var headerPattern = regexp.MustCompile(`^(query|mutation|subscription|fragment)\b\s*([_A-Za-z][_0-9A-Za-z]*)?`)

// Classify reports the kind and name of a definition block. ok is false for
// blocks that are neither queries, mutations nor fragments (subscriptions,
// schema definitions, garbage).
func Classify(text string) (kind Kind, name string, ok bool) {
	body := stripLeadingComments(text)
	if strings.HasPrefix(body, "{") {
		return KindQuery, "", true
	}
	m := headerPattern.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	switch m[1] {
	case "query":
		return KindQuery, m[2], true
	case "mutation":
		return KindMutation, m[2], true
	case "fragment":
		return KindFragment, m[2], true
	default:
		return "", "", false
	}
}

// Partition classifies texts into executable operations and fragment
// definitions, preserving encounter order. Blocks that are neither are returned
// in skipped.
func Partition(texts []string) (ops, fragments []*Operation, skipped []string) {
	for _, text := range texts {
		kind, name, ok := Classify(text)
		if !ok {
			skipped = append(skipped, text)
			continue
		}
		op := &Operation{Kind: kind, Name: name, Text: text}
		if op.IsFragment() {
			fragments = append(fragments, op)
			continue
		}
		op.Variables = ExtractVariables(text)
		ops = append(ops, op)
	}
	return ops, fragments, skipped
}

// JoinText concatenates the texts of ops separated by blank lines.
func JoinText(ops []*Operation) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, op.Text)
	}
	return strings.Join(parts, "\n\n")
}

func stripLeadingComments(text string) string {
	s := strings.TrimLeft(text, " \t\r\n,\ufeff")
	for strings.HasPrefix(s, "#") {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 {
			return ""
		}
		s = strings.TrimLeft(s[nl+1:], " \t\r\n,")
	}
	return s
}
