package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Diagnostic rendering
// ---------------------------------------------------------------------------

func formatDouble(d float64) string {
	if math.IsInf(d, 1) {
		return "+inf"
	}
	if math.IsInf(d, -1) {
		return "-inf"
	}
	if math.IsNaN(d) {
		return "nan"
	}
	s := strconv.FormatFloat(d, 'g', -1, 64)
	// Integral doubles keep a fractional marker so they read as doubles.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatDuration(seconds int64, nanos int32) string {
	if nanos == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	neg := seconds < 0 || nanos < 0
	s, n := seconds, int64(nanos)
	if neg {
		s, n = -s, -n
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", n), "0")
	out := fmt.Sprintf("%d.%ss", s, frac)
	if neg {
		return "-" + out
	}
	return out
}

// DebugString renders the value for diagnostics and error messages. The
// rendering is stable and unambiguous but not a parseable literal form for
// every kind.
func (v Value) DebugString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(int64(v.num), 10)
	case KindUint:
		return strconv.FormatUint(v.num, 10) + "u"
	case KindDouble:
		return formatDouble(math.Float64frombits(v.num))
	case KindString:
		return strconv.Quote(v.str)
	case KindBytes:
		return "b" + strconv.Quote(string(v.AsBytes()))
	case KindDuration:
		return formatDuration(int64(v.num), v.aux)
	case KindTimestamp:
		return v.AsTimestamp().Format(time.RFC3339Nano)
	case KindEnum:
		return fmt.Sprintf("%s(%d)", v.str, int64(v.num))
	case KindList:
		l := v.AsList()
		parts := make([]string, l.Len())
		for i := range parts {
			parts[i] = l.Get(i).DebugString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		m := v.AsMap()
		parts := make([]string, m.Len())
		for i := range parts {
			e := m.Entry(i)
			parts[i] = e.Key.DebugString() + ": " + e.Val.DebugString()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindStruct:
		return v.AsStruct().DebugString()
	case KindType:
		return v.AsType().String()
	case KindError:
		e := v.AsError()
		return fmt.Sprintf("error<%s: %s>", e.Code, e.Message)
	case KindUnknown:
		return v.AsUnknown().DebugString()
	default:
		return v.kind.String()
	}
}
