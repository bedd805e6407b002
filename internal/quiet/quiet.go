// Package quiet implements the quiet-hours gate that defers physical
// printing to a configured clock-hour window.
//
// A window is expressed as two hours on a 24-hour clock. When the start hour
// is below the end hour the window is a plain same-day range; otherwise it
// wraps past midnight. A window with equal bounds falls into the wrap branch
// and blocks every hour except the single excluded one; callers rely on that
// literal behavior, so it must not be special-cased.
package quiet

import "time"

// Window is a clock-hour range during which printing is deferred.
type Window struct {
	Start int
	End   int
}

// Blocked reports whether the given hour falls inside the window.
func (w Window) Blocked(hour int) bool {
	if w.Start < w.End {
		return w.Start <= hour && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

// BlockedAt reports whether the wall-clock time falls inside the window.
func (w Window) BlockedAt(now time.Time) bool {
	return w.Blocked(now.Hour())
}

// Wraps reports whether the window crosses midnight.
func (w Window) Wraps() bool {
	return w.Start >= w.End
}
