package engine

import (
	"encoding/json"
	"html"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// ThousandsSeparator is the narrow no-break space used between digit groups.
	ThousandsSeparator = "\u202f"
	// CurrencySuffix is a no-break space followed by the euro sign.
	CurrencySuffix = "\u00a0€"
	// MissingDate is rendered for absent or unparsable dates.
	MissingDate = "—"

	DefaultDateFormat     = "DD/MM/YYYY"
	DefaultDateTimeFormat = "DD/MM/YYYY HH:mm"
)

type helperFunc func(args []any, named map[string]any) any

// helpers is the closed helper set. Every helper is total: bad input
// degrades to 0, "—" or false.
var helpers = map[string]helperFunc{
	"currency": func(args []any, _ map[string]any) any {
		return Currency(argAt(args, 0))
	},
	"date": func(args []any, named map[string]any) any {
		return FormatDate(argAt(args, 0), layoutArg(args, named, DefaultDateFormat))
	},
	"datetime": func(args []any, named map[string]any) any {
		return FormatDate(argAt(args, 0), layoutArg(args, named, DefaultDateTimeFormat))
	},
	"ifEquals": func(args []any, _ map[string]any) any {
		return Equal(argAt(args, 0), argAt(args, 1))
	},
	"gt": func(args []any, _ map[string]any) any {
		return Greater(argAt(args, 0), argAt(args, 1))
	},
}

func isHelper(name string) bool {
	_, ok := helpers[name]
	return ok
}

// HelperNames lists the helpers templates may call.
func HelperNames() []string {
	return []string{"currency", "date", "datetime", "gt", "ifEquals"}
}

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func layoutArg(args []any, named map[string]any, fallback string) string {
	if s, ok := named["format"].(string); ok && s != "" {
		return s
	}
	if s, ok := argAt(args, 1).(string); ok && s != "" {
		return s
	}
	return fallback
}

// Currency formats v as euros the way the rest of the product displays
// money: "1 234,50 €" with narrow no-break space grouping. Non-numeric input
// formats as zero.
func Currency(v any) string {
	f, ok := toNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}

	s := strconv.FormatFloat(math.Abs(f), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if f < 0 && s != "0.00" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(ThousandsSeparator)
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteString(CurrencySuffix)
	return b.String()
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders an ISO-8601 date or time.Time using DD/MM/YYYY style
// tokens. Missing or unparsable input renders as "—".
func FormatDate(v any, layout string) string {
	t, ok := toTime(v)
	if !ok {
		return MissingDate
	}
	if layout == "" {
		layout = DefaultDateFormat
	}
	return formatTime(t, layout)
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), !x.IsZero()
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return x.UTC(), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

var dateTokens = []string{"YYYY", "YY", "MM", "DD", "HH", "mm", "ss", "M", "D", "H"}

// formatTime replaces layout tokens. Literal layout text is HTML-escaped.
func formatTime(t time.Time, layout string) string {
	var b strings.Builder
	literal := 0
	flush := func(end int) {
		if end > literal {
			b.WriteString(html.EscapeString(layout[literal:end]))
		}
	}
	for i := 0; i < len(layout); {
		matched := ""
		for _, tok := range dateTokens {
			if strings.HasPrefix(layout[i:], tok) {
				matched = tok
				break
			}
		}
		if matched == "" {
			i++
			continue
		}
		flush(i)
		literal = i + len(matched)
		switch matched {
		case "YYYY":
			b.WriteString(pad(t.Year(), 4))
		case "YY":
			b.WriteString(pad(t.Year()%100, 2))
		case "MM":
			b.WriteString(pad(int(t.Month()), 2))
		case "M":
			b.WriteString(strconv.Itoa(int(t.Month())))
		case "DD":
			b.WriteString(pad(t.Day(), 2))
		case "D":
			b.WriteString(strconv.Itoa(t.Day()))
		case "HH":
			b.WriteString(pad(t.Hour(), 2))
		case "H":
			b.WriteString(strconv.Itoa(t.Hour()))
		case "mm":
			b.WriteString(pad(t.Minute(), 2))
		case "ss":
			b.WriteString(pad(t.Second(), 2))
		}
		i += len(matched)
	}
	flush(len(layout))
	return b.String()
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// Equal compares loosely: numbers numerically, strings and booleans
// directly, anything else by its string form. Null and undefined only equal
// each other.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := numberValue(a); ok {
		if fb, ok := numberValue(b); ok {
			return fa == fb
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return sa == sb
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ba == bb
		}
	}
	return stringify(a) == stringify(b)
}

// Greater reports a > b numerically. Non-numeric operands compare false.
func Greater(a, b any) bool {
	fa, ok := toNumber(a)
	if !ok {
		return false
	}
	fb, ok := toNumber(b)
	if !ok {
		return false
	}
	return fa > fb
}

func numberValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// toNumber also accepts numeric strings.
func toNumber(v any) (float64, bool) {
	if f, ok := numberValue(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
