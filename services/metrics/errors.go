package metrics

import (
	"fmt"

	"github.com/pkg/errors"
)

// 配置/输入类错误，在发出任何查询之前返回
var (
	ErrInvalidTimeToken      = errors.New("invalid time token")
	ErrInvalidDimensionToken = errors.New("invalid dimension token")
	ErrMissingRequiredField  = errors.New("missing required field")
	ErrUnsupportedStatistic  = errors.New("unsupported statistic")
	ErrInvalidPeriod         = errors.New("period must be a positive number of seconds")
)

// ErrQueryFailed 查询监控API失败，只影响对应的那个请求
var ErrQueryFailed = errors.New("query failed")

// QueryError 携带底层原因的查询失败
type QueryError struct {
	Signature string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrQueryFailed, e.Signature, e.Err)
}

// Unwrap 支持errors.Is/As
func (e *QueryError) Unwrap() error { return e.Err }

// Cause 兼容pkg/errors.Cause
func (e *QueryError) Cause() error { return e.Err }

// Is 所有QueryError都匹配ErrQueryFailed
func (e *QueryError) Is(target error) bool { return target == ErrQueryFailed }

// IsConfigError 判断是否为配置/输入类错误
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidTimeToken) ||
		errors.Is(err, ErrInvalidDimensionToken) ||
		errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrUnsupportedStatistic) ||
		errors.Is(err, ErrInvalidPeriod)
}
