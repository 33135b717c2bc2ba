package transform

import (
	"time"

	"github.com/c360/mapengine/jsontree"
)

// dateFormat implements the dateFormat transform: null → null, array →
// element-wise, non-textual → null. Otherwise each inputFormats entry is
// tried in turn against the configured timezone (default UTC): first as
// an instant parse when the pattern carries a zone token, then — on
// failure, or without a zone token — as a calendar-date parse. The
// first format to succeed is used to render outputFormat. If nothing
// matches, the value becomes null and an event is raised. The
// instant-then-calendar order matters: a bare "yyyy-MM-dd" pattern only
// ever succeeds via the calendar path.
func dateFormat(d Descriptor, n jsontree.Node) (jsontree.Node, []Event) {
	if jsontree.IsNull(n) {
		return nil, nil
	}
	if jsontree.IsMissing(n) {
		return n, nil
	}
	if arr, ok := jsontree.Array(n); ok {
		return elementWise(arr, func(e jsontree.Node) (jsontree.Node, []Event) { return dateFormat(d, e) })
	}

	text, ok := jsontree.AsText(n)
	if !ok {
		return nil, nil
	}
	if _, isStr := n.(string); !isStr {
		// Non-textual scalars (numbers, booleans) are not valid date
		// inputs per the transform's contract even though AsText can
		// stringify them.
		return nil, []Event{{Stage: string(KindDateFormat), Message: "dateFormat input is not textual"}}
	}

	loc, err := zoneLocation(d.Timezone)
	if err != nil {
		return nil, []Event{{Stage: string(KindDateFormat), Message: err.Error()}}
	}

	outLayout := translateLayoutCached(d.OutputFormat)

	for _, inFmt := range d.InputFormats {
		inLayout := translateLayoutCached(inFmt)

		// Only attempt the instant parse when the layout itself carries a
		// zone token: time.Parse treats a zoneless layout as UTC, which
		// would silently shadow the calendar-date fallback below and
		// ignore the configured timezone entirely for patterns like
		// "yyyy-MM-dd".
		if hasZoneToken(inLayout) {
			if t, perr := time.Parse(inLayout, text); perr == nil {
				return t.In(loc).Format(outLayout), nil
			}
		}
		if t, perr := time.ParseInLocation(inLayout, text, loc); perr == nil {
			return t.In(loc).Format(outLayout), nil
		}
	}

	return nil, []Event{{Stage: string(KindDateFormat), Message: "no inputFormats matched: " + text}}
}

func zoneLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}
