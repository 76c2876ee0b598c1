package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"metric-fetch/conf"
	"metric-fetch/services/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu    sync.Mutex
	names []string
	fail  map[string]bool
}

func (f *fakeAPI) GetMetricStatistics(_ context.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	name := aws.ToString(in.MetricName)
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()
	if f.fail[name] {
		return nil, errors.New("AccessDenied")
	}
	base := time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)
	return &cloudwatch.GetMetricStatisticsOutput{Datapoints: []types.Datapoint{
		{Timestamp: aws.Time(base.Add(time.Minute)), Average: aws.Float64(2), Sum: aws.Float64(20)},
		{Timestamp: aws.Time(base), Average: aws.Float64(1), Sum: aws.Float64(10)},
	}}, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.names)
}

func setup(t *testing.T, api *fakeAPI) string {
	t.Helper()
	dir := t.TempDir()
	confFile := filepath.Join(dir, "test.yml")
	require.NoError(t, os.WriteFile(confFile, []byte("log:\n  filename: \"\"\n  level: error\n"), 0644))

	orig := newStatisticsAPI
	newStatisticsAPI = func(context.Context, *conf.AWSConfig) (metrics.StatisticsAPI, error) { return api, nil }
	t.Cleanup(func() { newStatisticsAPI = orig })
	return confFile
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	c := NewRootCommand()
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSingleMode(t *testing.T) {
	api := &fakeAPI{}
	confFile := setup(t, api)

	out, err := execute("--conf", confFile, "-n", "CPUUtilization", "--namespace", "AWS/EC2", "-s", "Average", "-d", "InstanceId=i-1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "timestamp=2022-08-01T00:00:00Z")
	assert.Contains(t, lines[0], "statistic_value=1")
	assert.Contains(t, lines[1], "statistic_value=2")
	assert.Contains(t, lines[0], "dimensions=InstanceId=i-1")
}

func TestSingleModeConfigErrorBeforeQuery(t *testing.T) {
	api := &fakeAPI{}
	confFile := setup(t, api)

	_, err := execute("--conf", confFile, "-n", "CPUUtilization", "--namespace", "AWS/EC2", "-s", "Velocity")
	assert.True(t, errors.Is(err, metrics.ErrUnsupportedStatistic))

	_, err = execute("--conf", confFile, "--namespace", "AWS/EC2")
	assert.True(t, errors.Is(err, metrics.ErrMissingRequiredField))

	_, err = execute("--conf", confFile, "-n", "CPUUtilization", "--namespace", "AWS/EC2", "--start-time", "q:1")
	assert.True(t, errors.Is(err, metrics.ErrInvalidTimeToken))

	_, err = execute("--conf", confFile, "-n", "CPUUtilization", "--namespace", "AWS/EC2", "--period=-60")
	assert.True(t, errors.Is(err, metrics.ErrInvalidPeriod))

	assert.Equal(t, 0, api.calls())
}

func TestSingleModeQueryFailureIsFatal(t *testing.T) {
	api := &fakeAPI{fail: map[string]bool{"CPUUtilization": true}}
	confFile := setup(t, api)

	_, err := execute("--conf", confFile, "-n", "CPUUtilization", "--namespace", "AWS/EC2", "-s", "Average")
	assert.True(t, errors.Is(err, metrics.ErrQueryFailed))
}

func TestBatchModeCSV(t *testing.T) {
	api := &fakeAPI{fail: map[string]bool{"NetworkOut": true}}
	confFile := setup(t, api)
	dir := t.TempDir()

	metricsFile := filepath.Join(dir, "metrics.json")
	require.NoError(t, os.WriteFile(metricsFile, []byte(`[
		{"name": "CPUUtilization", "namespace": "AWS/EC2", "statistic": "Average"},
		{"name": "NetworkOut", "namespace": "AWS/EC2", "statistic": "Sum"},
		{"namespace": "AWS/EC2", "statistic": "Sum"},
		{"name": "NetworkIn", "namespace": "AWS/EC2", "statistic": "Sum"}
	]`), 0644))
	csvPath := filepath.Join(dir, "dump.csv")

	_, err := execute("--conf", confFile, "-f", metricsFile, "--csv", "--csv-path", csvPath)
	require.NoError(t, err)

	// 缺少name的条目不会发起查询
	assert.Equal(t, 3, api.calls())

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "name,"))
	assert.True(t, strings.HasPrefix(lines[1], "CPUUtilization,"))
	assert.True(t, strings.HasPrefix(lines[3], "NetworkIn,"))
	assert.Contains(t, lines[4], ",Sum,20,")
}

func TestClientFailureKeepsPreviousDump(t *testing.T) {
	confFile := setup(t, &fakeAPI{})
	newStatisticsAPI = func(context.Context, *conf.AWSConfig) (metrics.StatisticsAPI, error) {
		return nil, errors.New("no valid credential sources found")
	}
	csvPath := filepath.Join(t.TempDir(), "dump.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("previous run\n"), 0644))

	_, err := execute("--conf", confFile, "-n", "CPUUtilization", "--namespace", "AWS/EC2", "-s", "Average",
		"--csv", "--csv-path", csvPath)
	require.Error(t, err)

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(b))
}

func TestBatchModeAllInvalid(t *testing.T) {
	api := &fakeAPI{}
	confFile := setup(t, api)
	metricsFile := filepath.Join(t.TempDir(), "metrics.yml")
	require.NoError(t, os.WriteFile(metricsFile, []byte("- namespace: AWS/EC2\n"), 0644))

	_, err := execute("--conf", confFile, "-f", metricsFile)
	assert.True(t, errors.Is(err, metrics.ErrMissingRequiredField))
	assert.Equal(t, 0, api.calls())
}

func TestBatchModeBadFile(t *testing.T) {
	confFile := setup(t, &fakeAPI{})
	_, err := execute("--conf", confFile, "-f", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
