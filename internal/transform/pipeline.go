package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/cad-normalizer/internal/cadtime"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
)

// Context carries the surroundings a transformation may need: the target
// field being produced and the full source row (datetime_combine reads
// sibling columns from it).
type Context struct {
	TargetField string
	Row         Row
	Parsed      ParsedFields
}

// ApplyTransformations runs an ordered transformation list over a value.
// Steps apply strictly left to right. A step that cannot do its job
// (invalid regex, unparseable date, wrong value type) returns its input
// unchanged; nothing in here panics or returns an error to the caller.
func ApplyTransformations(value interface{}, transformations []FieldTransformation, ctx Context) interface{} {
	for _, tr := range transformations {
		value = applyOne(value, tr, ctx)
	}
	return value
}

func applyOne(value interface{}, tr FieldTransformation, ctx Context) interface{} {
	switch tr.Type {
	case TransformSplit:
		return applySplit(value, tr.Params)
	case TransformJoin:
		return applyJoin(value, tr.Params)
	case TransformFormat:
		return applyFormat(value, tr.Params)
	case TransformConvert:
		return applyConvert(value, tr.Params)
	case TransformExtract:
		return applyExtract(value, tr.Params)
	case TransformReplace:
		return applyReplace(value, tr.Params)
	case TransformDatetimeCombine:
		return applyDatetimeCombine(value, tr.Params, ctx)
	case TransformDatetimeExtract:
		return applyDatetimeExtract(value, tr.Params)
	default:
		logger.Warn("unknown transformation type, passing value through", "type", string(tr.Type))
		return value
	}
}

// ---- split / join ----

func applySplit(value interface{}, params map[string]interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	delim := stringParam(params, "delimiter", ",")
	parts := strings.Split(s, delim)

	idx, hasIdx := intParam(params, "index")
	if !hasIdx {
		return parts
	}
	if idx < 0 || idx >= len(parts) {
		return value
	}
	return parts[idx]
}

func applyJoin(value interface{}, params map[string]interface{}) interface{} {
	delim := stringParam(params, "delimiter", ", ")
	switch v := value.(type) {
	case []string:
		return strings.Join(v, delim)
	case []interface{}:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, delim)
	default:
		return value
	}
}

// ---- format ----

// dateLayouts are tried in order when a format or convert step needs to
// understand a date value.
var dateLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006",
	"2006-01-02",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func applyFormat(value interface{}, params map[string]interface{}) interface{} {
	format := stringParam(params, "format", "")
	switch format {
	case "MM/DD/YYYY", "YYYY-MM-DD", "DD/MM/YYYY", "locale":
		s, ok := value.(string)
		if !ok {
			return value
		}
		t, ok := parseDate(s)
		if !ok {
			logger.Debug("format: unparseable date passes through", "format", format)
			return value
		}
		switch format {
		case "MM/DD/YYYY":
			return t.Format("01/02/2006")
		case "YYYY-MM-DD":
			return t.Format("2006-01-02")
		case "DD/MM/YYYY":
			return t.Format("02/01/2006")
		default: // locale
			return t.Format("1/2/2006")
		}
	case "integer", "decimal", "currency", "percent":
		f, ok := toFloat(value)
		if !ok {
			logger.Debug("format: non-numeric value passes through", "format", format)
			return value
		}
		switch format {
		case "integer":
			return strconv.FormatInt(int64(math.Round(f)), 10)
		case "decimal":
			return strconv.FormatFloat(f, 'f', 2, 64)
		case "currency":
			return "$" + strconv.FormatFloat(f, 'f', 2, 64)
		default: // percent
			return strconv.FormatFloat(f, 'f', 1, 64) + "%"
		}
	default:
		// Custom token template, e.g. "YYYY/MM/DD/HH/mm/ss".
		s, ok := value.(string)
		if !ok || format == "" {
			return value
		}
		t, ok := parseDate(s)
		if !ok {
			return value
		}
		return renderTokens(format, t)
	}
}

var tokenReplacer = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

func renderTokens(format string, t time.Time) string {
	out := format
	for _, r := range tokenReplacer {
		out = strings.ReplaceAll(out, r.token, t.Format(r.layout))
	}
	return out
}

// ---- convert ----

func applyConvert(value interface{}, params map[string]interface{}) interface{} {
	to := stringParam(params, "to", "string")
	switch to {
	case "string":
		return stringify(value)
	case "number":
		f, ok := toFloat(value)
		if !ok {
			logger.Debug("convert: unparseable number passes through")
			return value
		}
		return f
	case "boolean":
		switch v := value.(type) {
		case bool:
			return v
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "1", "yes", "y", "t":
				return true
			case "false", "0", "no", "n", "f":
				return false
			}
			return value
		case float64:
			return v != 0
		case int:
			return v != 0
		default:
			return value
		}
	case "date":
		s, ok := value.(string)
		if !ok {
			return value
		}
		t, ok := parseDate(s)
		if !ok {
			logger.Debug("convert: unparseable date passes through")
			return value
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return value
	}
}

// ---- extract / replace ----

func applyExtract(value interface{}, params map[string]interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	pattern := stringParam(params, "pattern", "")
	if pattern == "" {
		return value
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Warn("extract: invalid pattern, passing value through", "pattern", pattern)
		return value
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return value
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

func applyReplace(value interface{}, params map[string]interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	search := stringParam(params, "search", "")
	replacement := stringParam(params, "replacement", "")
	if boolParam(params, "regex") {
		re, err := regexp.Compile(search)
		if err != nil {
			logger.Warn("replace: invalid pattern, passing value through", "pattern", search)
			return value
		}
		return re.ReplaceAllString(s, replacement)
	}
	return strings.ReplaceAll(s, search, replacement)
}

// ---- datetime ----

func applyDatetimeCombine(value interface{}, params map[string]interface{}, ctx Context) interface{} {
	dateField := stringParam(params, "dateField", "")
	timeField := stringParam(params, "timeField", "")

	dateVal, dateOK := ctx.Row[dateField]
	timeVal, timeOK := ctx.Row[timeField]
	if !dateOK || !timeOK {
		return value
	}
	return cadtime.CombineDateAndTime(stringify(dateVal), stringify(timeVal))
}

func applyDatetimeExtract(value interface{}, params map[string]interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	switch stringParam(params, "extractType", "time") {
	case "date":
		return cadtime.ExtractDate(s)
	default:
		return cadtime.ExtractTime(s)
	}
}

// ---- param helpers ----

func stringParam(params map[string]interface{}, key, def string) string {
	if params == nil {
		return def
	}
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func intParam(params map[string]interface{}, key string) (int, bool) {
	if params == nil {
		return 0, false
	}
	switch v := params[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func boolParam(params map[string]interface{}, key string) bool {
	if params == nil {
		return false
	}
	b, _ := params[key].(bool)
	return b
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(v, "$"), ",", ""))
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// Avoid the %v "1.11e+02" style for whole numbers out of JSON
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
