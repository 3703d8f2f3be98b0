package interp

import (
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Trace listeners
// ---------------------------------------------------------------------------

// Listener observes intermediate results during a traced evaluation. It is
// invoked after each AST-originated step with the step's expression id and
// the value it produced.
type Listener func(exprID int64, v types.Value, trail types.Attribute)

var traceLog = commonlog.GetLogger("sift.interp")

// LogListener returns a listener that writes each observed step to the
// package logger, stamping the whole traced evaluation with a fresh id so
// interleaved traces stay separable.
func LogListener() Listener {
	evalID := uuid.NewString()
	return func(exprID int64, v types.Value, trail types.Attribute) {
		if trail.Empty() {
			traceLog.Debugf("eval %s: expr %d = %s", evalID, exprID, v.DebugString())
			return
		}
		traceLog.Debugf("eval %s: expr %d = %s (from %s)", evalID, exprID, v.DebugString(), trail.String())
	}
}
