package metrics

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultLookback 未指定起始时间时的回溯长度
const DefaultLookback = 20 * 24 * time.Hour

var timeUnits = map[string]time.Duration{
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// Window 查询的时间窗口
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveStart 把 "<unit>:<amount>" 形式的相对时间转换为绝对起始时间，unit为d/h/w
// token为空时回溯DefaultLookback
func ResolveStart(token string, now time.Time) (time.Time, error) {
	if token == "" {
		return now.Add(-DefaultLookback), nil
	}
	groups := strings.Split(token, ":")
	if len(groups) != 2 {
		return time.Time{}, errors.Wrapf(ErrInvalidTimeToken, "%q: want <unit>:<amount>", token)
	}
	unit, ok := timeUnits[groups[0]]
	if !ok {
		return time.Time{}, errors.Wrapf(ErrInvalidTimeToken, "%q: unknown unit %q", token, groups[0])
	}
	amount, err := strconv.ParseUint(groups[1], 10, 63)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidTimeToken, "%q: amount must be a non-negative integer", token)
	}
	if amount > uint64(math.MaxInt64/int64(unit)) {
		return time.Time{}, errors.Wrapf(ErrInvalidTimeToken, "%q: amount out of range", token)
	}
	return now.Add(-time.Duration(amount) * unit), nil
}

// ResolveWindow 以now为结束时间解析窗口
func ResolveWindow(token string, now time.Time) (Window, error) {
	start, err := ResolveStart(token, now)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: now}, nil
}
