package metrics

import (
	"strconv"
	"time"

	apimetrics "metric-fetch/api/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Normalize 把一个数据点和它对应的请求转换为一条输出记录
// 数据点上缺少所选统计项时对应的值为空，不报错
func Normalize(req *MetricRequest, dp types.Datapoint) apimetrics.OutputRecord {
	out := apimetrics.OutputRecord{
		Name:       req.Name,
		Dimensions: FormatDimensions(req.Dimensions),
		Timestamp:  FormatTimestamp(aws.ToTime(dp.Timestamp)),
	}

	if req.Statistic != "" {
		out.Statistic = req.Statistic.String()
		if v, ok := req.Statistic.Value(dp); ok {
			out.StatisticValue = FormatValue(v)
		}
	}

	if req.ExtendedStatistic != "" {
		if v, ok := dp.ExtendedStatistics[req.ExtendedStatistic]; ok {
			out.ExtendedStatistic = req.ExtendedStatistic
			out.ExtendedStatisticValue = FormatValue(v)
		}
	}
	return out
}

// NormalizeAll 每个数据点对应一条记录，顺序不变
func NormalizeAll(req *MetricRequest, dps []types.Datapoint) []apimetrics.OutputRecord {
	records := make([]apimetrics.OutputRecord, len(dps))
	for i := range dps {
		records[i] = Normalize(req, dps[i])
	}
	return records
}

// FormatTimestamp RFC3339, UTC
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatValue 最短表示，42 -> "42"
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
