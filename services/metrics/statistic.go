package metrics

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/pkg/errors"
)

// Statistic 支持的普通统计项
type Statistic string

const (
	StatisticSampleCount Statistic = "SampleCount"
	StatisticSum         Statistic = "Sum"
	StatisticMaximum     Statistic = "Maximum"
	StatisticAverage     Statistic = "Average"
	StatisticMinimum     Statistic = "Minimum"
)

// accessors 统计项到数据点字段的映射
var accessors = map[Statistic]func(dp types.Datapoint) *float64{
	StatisticSampleCount: func(dp types.Datapoint) *float64 { return dp.SampleCount },
	StatisticSum:         func(dp types.Datapoint) *float64 { return dp.Sum },
	StatisticMaximum:     func(dp types.Datapoint) *float64 { return dp.Maximum },
	StatisticAverage:     func(dp types.Datapoint) *float64 { return dp.Average },
	StatisticMinimum:     func(dp types.Datapoint) *float64 { return dp.Minimum },
}

// ParseStatistic 只接受accessors中的名字，大小写敏感
func ParseStatistic(name string) (Statistic, error) {
	s := Statistic(name)
	if _, ok := accessors[s]; !ok {
		return "", errors.Wrapf(ErrUnsupportedStatistic, "%q", name)
	}
	return s, nil
}

// Value 取数据点上对应字段，API没有返回该值时ok为false
func (s Statistic) Value(dp types.Datapoint) (v float64, ok bool) {
	get, found := accessors[s]
	if !found {
		return 0, false
	}
	p := get(dp)
	if p == nil {
		return 0, false
	}
	return *p, true
}

func (s Statistic) String() string { return string(s) }
