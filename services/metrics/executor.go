package metrics

import (
	"context"
	"sort"
	"time"

	"metric-fetch/dao/gocache"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StatisticsAPI 监控API中用到的唯一调用，*cloudwatch.Client实现了该接口
type StatisticsAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Querier 把一个MetricRequest转换为按时间升序排列的数据点
type Querier interface {
	Query(ctx context.Context, req *MetricRequest) ([]types.Datapoint, error)
}

// Executor 直接调用监控API，不重试
type Executor struct {
	API     StatisticsAPI
	Timeout time.Duration // 单次调用超时，<=0表示不设置
}

// NewExecutor 创建Executor
func NewExecutor(api StatisticsAPI, timeout time.Duration) *Executor {
	return &Executor{API: api, Timeout: timeout}
}

// BuildInput 把MetricRequest转换为API请求参数
func BuildInput(req *MetricRequest) *cloudwatch.GetMetricStatisticsInput {
	in := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(req.Namespace),
		MetricName: aws.String(req.Name),
		Period:     aws.Int32(req.Period),
		StartTime:  aws.Time(req.Start),
		EndTime:    aws.Time(req.End),
	}
	if len(req.Dimensions) > 0 {
		in.Dimensions = make([]types.Dimension, len(req.Dimensions))
		for i, d := range req.Dimensions {
			in.Dimensions[i] = types.Dimension{
				Name:  aws.String(d.Name),
				Value: aws.String(d.Value),
			}
		}
	}
	if req.Statistic != "" {
		in.Statistics = []types.Statistic{types.Statistic(req.Statistic)}
	}
	if req.ExtendedStatistic != "" {
		in.ExtendedStatistics = []string{req.ExtendedStatistic}
	}
	return in
}

// Query 发起一次统计查询，返回的数据点按时间升序排列，没有数据时返回空切片
func (e *Executor) Query(ctx context.Context, req *MetricRequest) ([]types.Datapoint, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	sig := Signature(req)
	start := time.Now()
	out, err := e.API.GetMetricStatistics(ctx, BuildInput(req))
	if err != nil {
		zap.L().Debug("get metric statistics failed",
			zap.String("signature", sig),
			zap.Duration("cost", time.Since(start)),
			zap.Error(err))
		return nil, &QueryError{Signature: sig, Err: err}
	}

	var datapoints []types.Datapoint
	if out != nil {
		datapoints = out.Datapoints
	}
	values := make([]types.Datapoint, len(datapoints))
	copy(values, datapoints)
	SortDatapoints(values)

	zap.L().Debug("get metric statistics",
		zap.String("signature", sig),
		zap.Int("datapoints", len(values)),
		zap.Duration("cost", time.Since(start)))
	return values, nil
}

// SortDatapoints 按时间戳升序排序，API不保证返回顺序
func SortDatapoints(dps []types.Datapoint) {
	sort.SliceStable(dps, func(i, j int) bool {
		return aws.ToTime(dps[i].Timestamp).Before(aws.ToTime(dps[j].Timestamp))
	})
}

// CachedExecutor 相同签名的查询只发起一次，结果缓存在gocache中，失败结果不缓存
type CachedExecutor struct {
	next  Querier
	group singleflight.Group
}

// NewCachedExecutor 包装一个Querier
func NewCachedExecutor(next Querier) *CachedExecutor {
	return &CachedExecutor{next: next}
}

// Query 实现Querier
func (c *CachedExecutor) Query(ctx context.Context, req *MetricRequest) ([]types.Datapoint, error) {
	key := Signature(req)
	if v, found := gocache.Get(key); found {
		if dps, ok := v.([]types.Datapoint); ok {
			zap.L().Debug("metric statistics hit cache", zap.String("signature", key))
			return cloneDatapoints(dps), nil
		}
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		dps, err := c.next.Query(ctx, req)
		if err != nil {
			return nil, err
		}
		gocache.SetDefault(key, dps)
		return dps, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		zap.L().Debug("metric statistics shared with concurrent query", zap.String("signature", key))
	}
	return cloneDatapoints(v.([]types.Datapoint)), nil
}

func cloneDatapoints(dps []types.Datapoint) []types.Datapoint {
	out := make([]types.Datapoint, len(dps))
	copy(out, dps)
	return out
}
