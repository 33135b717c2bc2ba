package transform

import (
	"strings"

	"github.com/c360/mapengine/jsontree"
)

// mask implements the mask transform: null → null, array →
// element-wise, otherwise coerce to text and apply a pattern from
// {ssn, creditcard, email, phone, name, full, partial, custom}.
func mask(d Descriptor, n jsontree.Node) (jsontree.Node, []Event) {
	if jsontree.IsNull(n) {
		return nil, nil
	}
	if jsontree.IsMissing(n) {
		return n, nil
	}
	if arr, ok := jsontree.Array(n); ok {
		return elementWise(arr, func(e jsontree.Node) (jsontree.Node, []Event) { return mask(d, e) })
	}

	text, ok := jsontree.AsText(n)
	if !ok {
		return n, []Event{{Stage: string(KindMask), Message: "value has no textual coercion"}}
	}

	switch strings.ToLower(d.Pattern) {
	case "ssn":
		return maskSSN(text), nil
	case "creditcard":
		return maskCreditCard(text), nil
	case "email":
		return maskEmail(text), nil
	case "phone":
		return maskPhone(text), nil
	case "name":
		return maskName(text), nil
	case "full":
		return maskFull(text), nil
	case "partial":
		return maskPartial(text), nil
	case "custom":
		return maskCustom(d.Custom, text)
	default:
		return maskPartial(text), []Event{{Stage: string(KindMask), Message: "unknown mask pattern, falling back to partial"}}
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func maskSSN(text string) string {
	digits := digitsOnly(text)
	if len(digits) < 4 {
		return "****"
	}
	return "***-**-" + lastN(digits, 4)
}

func maskCreditCard(text string) string {
	digits := digitsOnly(text)
	switch {
	case len(digits) >= 12:
		return "****-****-****-" + lastN(digits, 4)
	case len(digits) >= 4:
		return "****-" + lastN(digits, 4)
	default:
		return "****"
	}
}

func maskEmail(text string) string {
	at := strings.IndexByte(text, '@')
	if at < 0 {
		return "****@****.***"
	}
	local := text[:at]
	domain := text[at:]
	if len(local) <= 1 {
		return "*" + domain
	}
	return local[:1] + "***" + domain
}

func maskPhone(text string) string {
	digits := digitsOnly(text)
	switch {
	case len(digits) >= 10:
		return "***-***-" + lastN(digits, 4)
	case len(digits) >= 4:
		return "***-" + lastN(digits, 4)
	default:
		return "****"
	}
}

func maskName(text string) string {
	tokens := strings.Fields(text)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		out[i] = tok[:1] + "***"
	}
	return strings.Join(out, " ")
}

func maskFull(text string) string {
	n := len(text)
	if n > 16 {
		n = 16
	}
	return strings.Repeat("*", n)
}

func maskPartial(text string) string {
	if len(text) < 3 {
		return strings.Repeat("*", len(text))
	}
	return text[:1] + strings.Repeat("*", len(text)-2) + text[len(text)-1:]
}

// maskCustom splits d at the first "|" into a regex and a replacement,
// compiling the regex through the shared, ReDoS-guarded regex cache. Any
// failure (malformed split, compile error) falls back to partial
// masking.
func maskCustom(d string, text string) (string, []Event) {
	parts := strings.SplitN(d, "|", 2)
	if len(parts) != 2 {
		return maskPartial(text), []Event{{Stage: string(KindMask), Message: "malformed custom pattern, falling back to partial"}}
	}
	re, err := compileRegex(parts[0])
	if err != nil {
		return maskPartial(text), []Event{{Stage: string(KindMask), Message: "invalid custom pattern, falling back to partial: " + err.Error()}}
	}
	return re.ReplaceAllString(text, parts[1]), nil
}
