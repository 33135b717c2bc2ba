package transform

import (
	"fmt"
	"strings"

	"github.com/c360/mapengine/pkg/cache"
)

// layoutCache memoizes translated layouts process-wide, keyed by the
// original pattern text: get-or-compute, write-through on first use,
// last-writer-wins on duplicate concurrent translations (translation is
// idempotent, so overwrites are harmless).
var layoutCache = newLayoutCache()

func newLayoutCache() cache.Cache[string] {
	c, err := cache.NewSimple[string]()
	if err != nil {
		panic(fmt.Sprintf("transform: failed to initialize layout cache: %v", err))
	}
	return c
}

// translateLayoutCached returns the Go layout for pattern, translating
// and caching it on first use.
func translateLayoutCached(pattern string) string {
	if l, ok := layoutCache.Get(pattern); ok {
		return l
	}
	l := translateLayout(pattern)
	layoutCache.Set(pattern, l)
	return l
}

// translateLayout converts a Java SimpleDateFormat-style pattern (the
// form used throughout the mapping documents' dateFormat transform,
// e.g. "yyyy-MM-dd'T'HH:mm:ssXXX") into a Go reference-time layout
// string. No corpus library performs this translation, so it is written
// directly against Go's time package rather than against a borrowed
// date-formatting dependency.
//
// Supported letter runs (case-sensitive, run length matters):
//
//	yyyy/yy   year            MMMM/MMM/MM/M  month
//	dd/d      day of month     EEEE/EEE       weekday name
//	HH/H      24h hour         hh/h           12h hour
//	mm/m      minute           ss/s           second
//	SSS       millisecond      a              AM/PM
//	XXX/XX/X  zone offset      Z              zone offset (+hhmm)
//	z         zone name
//
// A single-quoted run is copied through literally, with '' decoding to a
// single literal quote, matching SimpleDateFormat's quoting rule.
func translateLayout(pattern string) string {
	var out strings.Builder
	i := 0
	n := len(pattern)
	for i < n {
		c := pattern[i]
		switch {
		case c == '\'':
			j := i + 1
			for j < n && pattern[j] != '\'' {
				j++
			}
			if j >= n {
				out.WriteString(pattern[i+1:])
				i = n
				continue
			}
			if j == i+1 {
				out.WriteByte('\'')
			} else {
				out.WriteString(pattern[i+1 : j])
			}
			i = j + 1
		case isLetter(c):
			j := i
			for j < n && pattern[j] == c {
				j++
			}
			out.WriteString(layoutToken(pattern[i:j]))
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func layoutToken(run string) string {
	switch run {
	case "yyyy":
		return "2006"
	case "yy":
		return "06"
	case "MMMM":
		return "January"
	case "MMM":
		return "Jan"
	case "MM":
		return "01"
	case "M":
		return "1"
	case "dd":
		return "02"
	case "d":
		return "2"
	case "EEEE":
		return "Monday"
	case "EEE":
		return "Mon"
	case "HH":
		return "15"
	case "H":
		return "15"
	case "hh":
		return "03"
	case "h":
		return "3"
	case "mm":
		return "04"
	case "m":
		return "4"
	case "ss":
		return "05"
	case "s":
		return "5"
	case "SSS":
		return "000"
	case "SS":
		return "00"
	case "S":
		return "0"
	case "a":
		return "PM"
	case "XXX":
		return "Z07:00"
	case "XX":
		return "Z0700"
	case "X":
		return "Z07"
	case "ZZZZ", "Z":
		return "-0700"
	case "z":
		return "MST"
	default:
		return run
	}
}

// hasZoneToken reports whether a translated Go layout contains a zone
// component, i.e. whether the source text is expected to carry its own
// offset/name rather than being a bare calendar date or time.
func hasZoneToken(goLayout string) bool {
	for _, tok := range []string{"Z07:00", "Z0700", "Z07", "-0700", "MST"} {
		if strings.Contains(goLayout, tok) {
			return true
		}
	}
	return false
}
