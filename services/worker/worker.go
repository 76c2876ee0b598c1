package worker

import (
	"context"
	"time"

	apimetrics "metric-fetch/api/metrics"
	"metric-fetch/services/metrics"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result 与输入条目一一对应
type Result struct {
	Index      int
	Request    *metrics.MetricRequest
	Datapoints []types.Datapoint
	Err        error
}

// Run 并发查询所有合法条目，等待全部完成后返回，某个请求失败不会取消其他请求
// limit<=0 时不限制并发数
func Run(ctx context.Context, q metrics.Querier, entries []metrics.BatchEntry, limit int) []Result {
	results := make([]Result, len(entries))

	// 不使用errgroup.WithContext，避免第一个失败取消其他请求
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	start := time.Now()
	for i := range entries {
		i := i
		results[i] = Result{Index: entries[i].Index, Request: entries[i].Request, Err: entries[i].Err}
		if entries[i].Err != nil {
			zap.L().Warn("metric entry rejected, skip",
				zap.Int("index", entries[i].Index),
				zap.String("name", entries[i].Descriptor.Name),
				zap.Error(entries[i].Err))
			continue
		}

		g.Go(func() error {
			dps, err := q.Query(ctx, results[i].Request)
			if err != nil {
				zap.L().Error("metric query failed",
					zap.Int("index", results[i].Index),
					zap.String("name", results[i].Request.Name),
					zap.Error(err))
				results[i].Err = err
				return nil
			}
			results[i].Datapoints = dps
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Debug("all metric queries settled",
		zap.Int("entries", len(entries)),
		zap.Duration("cost", time.Since(start)))
	return results
}

// RunOne 单指标模式，等价于只有一个条目的批量
func RunOne(ctx context.Context, q metrics.Querier, req *metrics.MetricRequest) Result {
	return Run(ctx, q, []metrics.BatchEntry{{Request: req}}, 1)[0]
}

// Stats 统计查询结果，NumRecords由输出阶段累加
func Stats(results []Result) apimetrics.RunStats {
	var s apimetrics.RunStats
	s.NumRequests = uint64(len(results))
	for i := range results {
		switch {
		case results[i].Err == nil:
			s.NumSucceeded++
		case metrics.IsConfigError(results[i].Err):
			s.NumRejected++
		default:
			s.NumFailed++
		}
	}
	return s
}
