package metrics

import (
	"reflect"
	"strings"
	"time"

	apimetrics "metric-fetch/api/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// DefaultPeriod 未指定period时的聚合周期，单位秒
const DefaultPeriod int32 = 300

// MetricRequest 一次统计查询的完整描述，创建后不再修改
type MetricRequest struct {
	Namespace         string
	Name              string
	Statistic         Statistic // 为空表示未选择
	ExtendedStatistic string    // 为空表示未选择
	Dimensions        []Dimension
	Period            int32
	Window
}

// HasSelector 至少选择了一种统计项，否则输出中不会有任何值
func (r *MetricRequest) HasSelector() bool {
	return r.Statistic != "" || r.ExtendedStatistic != ""
}

// Flags 单指标模式下来自命令行的参数
type Flags struct {
	Name              string
	Namespace         string
	Statistic         string
	ExtendedStatistic string
	Dimensions        []string
	Period            int32
	StartTime         string
}

// Defaults 批量模式下条目未指定时使用的默认值
type Defaults struct {
	Period    int32
	StartTime string
}

// BatchEntry 批量配置中的一条，Err不为空时不会发起查询
type BatchEntry struct {
	Index      int
	Descriptor apimetrics.MetricDescriptor
	Request    *MetricRequest
	Err        error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateDescriptor 校验必填字段和统计项名称
// required失败对应ErrMissingRequiredField，oneof失败对应ErrUnsupportedStatistic
func validateDescriptor(d *apimetrics.MetricDescriptor) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate metric descriptor")
	}

	var missing []string
	var unsupported error
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "oneof":
			if unsupported == nil {
				unsupported = errors.Wrapf(ErrUnsupportedStatistic, "%q", fe.Value())
			}
		default:
			return errors.Errorf("%s: failed on %s", fe.Field(), fe.Tag())
		}
	}
	if len(missing) > 0 {
		return errors.Wrap(ErrMissingRequiredField, strings.Join(missing, ", "))
	}
	return unsupported
}

// newRequest 校验通过后组装MetricRequest
func newRequest(d *apimetrics.MetricDescriptor, dims []Dimension, period int32, startTime string, now time.Time) (*MetricRequest, error) {
	var stat Statistic
	if d.Statistic != "" {
		s, err := ParseStatistic(d.Statistic)
		if err != nil {
			return nil, err
		}
		stat = s
	}

	window, err := ResolveWindow(startTime, now)
	if err != nil {
		return nil, err
	}

	if period < 0 {
		return nil, errors.Wrapf(ErrInvalidPeriod, "%d", period)
	}
	if period == 0 {
		period = DefaultPeriod
	}

	return &MetricRequest{
		Namespace:         d.Namespace,
		Name:              d.Name,
		Statistic:         stat,
		ExtendedStatistic: d.ExtendedStatistic,
		Dimensions:        dims,
		Period:            period,
		Window:            window,
	}, nil
}

// NewRequestFromFlags 单指标模式，任何错误都应终止运行
func NewRequestFromFlags(f Flags, now time.Time) (*MetricRequest, error) {
	d := apimetrics.MetricDescriptor{
		Name:              f.Name,
		Namespace:         f.Namespace,
		Statistic:         f.Statistic,
		ExtendedStatistic: f.ExtendedStatistic,
	}
	if err := validateDescriptor(&d); err != nil {
		return nil, err
	}
	dims, err := ParseDimensions(f.Dimensions)
	if err != nil {
		return nil, err
	}
	return newRequest(&d, dims, f.Period, f.StartTime, now)
}

// NewRequestFromDescriptor 批量模式的一条，period/start_time未指定时使用defaults
func NewRequestFromDescriptor(d apimetrics.MetricDescriptor, defaults Defaults, now time.Time) (*MetricRequest, error) {
	d.ApplyAliases()
	if err := validateDescriptor(&d); err != nil {
		return nil, err
	}
	period := d.Period
	if period == 0 {
		period = defaults.Period
	}
	startTime := d.StartTime
	if startTime == "" {
		startTime = defaults.StartTime
	}
	return newRequest(&d, DimensionsFromMap(d.Dimensions), period, startTime, now)
}

// BuildBatch 先校验全部条目，不合法的条目只记录错误，不影响其他条目
func BuildBatch(descs []apimetrics.MetricDescriptor, defaults Defaults, now time.Time) []BatchEntry {
	entries := make([]BatchEntry, len(descs))
	for i := range descs {
		req, err := NewRequestFromDescriptor(descs[i], defaults, now)
		entries[i] = BatchEntry{
			Index:      i,
			Descriptor: descs[i],
			Request:    req,
			Err:        errors.Wrapf(err, "metric #%d", i),
		}
	}
	return entries
}

// ValidEntries 统计可以发起查询的条目数
func ValidEntries(entries []BatchEntry) int {
	n := 0
	for i := range entries {
		if entries[i].Err == nil {
			n++
		}
	}
	return n
}
