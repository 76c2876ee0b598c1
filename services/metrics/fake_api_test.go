package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// fakeAPI 记录收到的请求，按metric name返回预置结果
type fakeAPI struct {
	mu      sync.Mutex
	inputs  []*cloudwatch.GetMetricStatisticsInput
	results map[string][]types.Datapoint
	errs    map[string]error
	delay   time.Duration
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		results: make(map[string][]types.Datapoint),
		errs:    make(map[string]error),
	}
}

func (f *fakeAPI) GetMetricStatistics(ctx context.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	name := aws.ToString(in.MetricName)
	dps, err := f.results[name], f.errs[name]
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &cloudwatch.GetMetricStatisticsOutput{Label: in.MetricName, Datapoints: dps}, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func point(ts time.Time, sum float64) types.Datapoint {
	return types.Datapoint{Timestamp: aws.Time(ts), Sum: aws.Float64(sum)}
}

// dimensionAPI 返回Sum等于请求维度个数的单个数据点
type dimensionAPI struct {
	calls int
}

func (f *dimensionAPI) GetMetricStatistics(_ context.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	f.calls++
	return &cloudwatch.GetMetricStatisticsOutput{Datapoints: []types.Datapoint{
		point(time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC), float64(len(in.Dimensions))),
	}}, nil
}
