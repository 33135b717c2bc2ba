package pathlang

import (
	"strconv"
	"strings"
)

// tokenize splits path text (with the root marker already stripped) into
// segments, matching left-to-right, greedy, per the grammar:
//
//	predicate := [?(@.FIELD == LITERAL (&& @.FIELD == LITERAL)?)]
//	indexOrWildcard := [N] | [*]
//	field := run of word characters
//
// A bare field segment is delimited by '.' or the start of a '[' token.
func tokenize(text string) ([]Segment, error) {
	var segs []Segment
	i := 0
	n := len(text)

	for i < n {
		switch {
		case text[i] == '.':
			i++
			continue
		case text[i] == '[':
			end := strings.IndexByte(text[i:], ']')
			if end < 0 {
				return nil, &pathError{"unterminated '[' in path"}
			}
			inner := text[i+1 : i+end]
			seg, err := parseBracket(inner)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			i += end + 1
		default:
			j := i
			for j < n && isWordChar(text[j]) && text[j] != '[' && text[j] != '.' {
				j++
			}
			if j == i {
				return nil, &pathError{"unexpected character in path: " + string(text[i])}
			}
			segs = append(segs, Segment{Kind: SegField, Field: text[i:j]})
			i = j
		}
	}

	return segs, nil
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// parseBracket handles the content between '[' and ']': an index, a
// wildcard, or a predicate body starting with "?(".
func parseBracket(inner string) (Segment, error) {
	inner = strings.TrimSpace(inner)
	switch {
	case inner == "*":
		return Segment{Kind: SegWildcard}, nil
	case strings.HasPrefix(inner, "?("):
		return parsePredicate(inner)
	default:
		idx, err := strconv.Atoi(inner)
		if err != nil || idx < 0 {
			return Segment{}, &pathError{"invalid index segment: [" + inner + "]"}
		}
		return Segment{Kind: SegIndex, Index: idx}, nil
	}
}

// parsePredicate parses "?(@.FIELD == LITERAL (&& @.FIELD == LITERAL)?)".
func parsePredicate(inner string) (Segment, error) {
	if !strings.HasSuffix(inner, ")") {
		return Segment{}, &pathError{"unterminated predicate: [" + inner + "]"}
	}
	body := inner[2 : len(inner)-1] // strip "?(" and ")"

	clauses := strings.Split(body, "&&")
	if len(clauses) == 0 || len(clauses) > 2 {
		return Segment{}, &pathError{"predicate must have one or two clauses: [" + inner + "]"}
	}

	preds := make([]Predicate, 0, len(clauses))
	for _, c := range clauses {
		p, err := parseEquality(c)
		if err != nil {
			return Segment{}, err
		}
		preds = append(preds, p)
	}
	return Segment{Kind: SegFilter, Predicates: preds}, nil
}

// parseEquality parses "@.FIELD == LITERAL" where LITERAL is unquoted or
// single-quoted and must not contain "'" or "]".
func parseEquality(clause string) (Predicate, error) {
	clause = strings.TrimSpace(clause)
	parts := strings.SplitN(clause, "==", 2)
	if len(parts) != 2 {
		return Predicate{}, &pathError{"malformed predicate clause: " + clause}
	}

	field := strings.TrimSpace(parts[0])
	field = strings.TrimPrefix(field, "@.")
	field = strings.TrimSpace(field)
	if field == "" {
		return Predicate{}, &pathError{"predicate clause has no field: " + clause}
	}

	literal := strings.TrimSpace(parts[1])
	if len(literal) >= 2 && literal[0] == '\'' && literal[len(literal)-1] == '\'' {
		literal = literal[1 : len(literal)-1]
		if strings.ContainsAny(literal, "'") {
			return Predicate{}, &pathError{"quoted literal contains a forbidden quote: " + clause}
		}
	}
	if strings.ContainsAny(literal, "]") {
		return Predicate{}, &pathError{"literal contains a forbidden ']': " + clause}
	}

	return Predicate{Field: field, Literal: literal}, nil
}
