package cmd

import (
	"context"
	"io"
	"time"

	apimetrics "metric-fetch/api/metrics"
	"metric-fetch/conf"
	"metric-fetch/dao/cloudwatch"
	"metric-fetch/dao/gocache"
	"metric-fetch/services/metrics"
	"metric-fetch/services/sink"
	"metric-fetch/services/worker"
	"metric-fetch/utils/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newStatisticsAPI 测试中替换为fake
var newStatisticsAPI = func(ctx context.Context, cfg *conf.AWSConfig) (metrics.StatisticsAPI, error) {
	return cloudwatch.NewClient(ctx, cfg)
}

// options 命令行参数
type options struct {
	confFile   string
	configFile string
	metrics.Flags
}

// NewRootCommand creates the metric-fetch command
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "metric-fetch",
		Short: "Fetch CloudWatch metric statistics and print one record per data point",
		Long: `metric-fetch queries the CloudWatch GetMetricStatistics API for one metric
described by flags, or for a batch of metrics listed in a json/yaml config file,
and writes one record per data point to stdout or to a csv file.`,
		Version:       conf.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.Init(opts.confFile, cmd.Flags()); err != nil {
				return errors.Wrap(err, "init settings failed")
			}
			if err := logger.Init(conf.Conf.LogConfig); err != nil {
				return errors.Wrap(err, "init logger failed")
			}
			defer zap.L().Sync()

			return run(cmd.Context(), cmd, opts, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.Name, "name", "n", "", "metric name, e.g. CPUUtilization")
	fs.StringVar(&opts.Namespace, "namespace", "", "metric namespace, e.g. AWS/EC2")
	fs.StringVarP(&opts.Statistic, "statistic", "s", "", "one of SampleCount, Sum, Maximum, Average, Minimum")
	fs.StringVarP(&opts.ExtendedStatistic, "extended-statistic", "e", "", "percentile statistic, e.g. p99")
	fs.StringArrayVarP(&opts.Dimensions, "dimension", "d", nil, "dimension filter key=value, repeatable")
	fs.StringVarP(&opts.configFile, "config-file", "f", "", "json/yaml file with a list of metrics, enables batch mode")
	fs.StringVar(&opts.confFile, "conf", "", "application config file (default ./conf/$GO_ENV.yml)")

	// 以下flag绑定到conf，见conf.Init
	fs.StringP("region", "r", conf.DefaultRegion, "aws region")
	fs.String("profile", "", "aws shared config profile (default $AWS_DEFAULT_PROFILE)")
	fs.String("endpoint", "", "override monitoring api endpoint")
	fs.Int32P("period", "p", metrics.DefaultPeriod, "aggregation period in seconds")
	fs.String("start-time", "d:20", "lookback as <unit>:<amount>, unit one of d, h, w")
	fs.Duration("timeout", 30*time.Second, "timeout of a single query")
	fs.BoolP("csv", "c", false, "write records to csv instead of stdout")
	fs.String("csv-path", conf.DefaultCSVPath, "csv output path")
	fs.String("log-level", "info", "debug, info, warn or error")

	return cmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, stdout io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// 同一次运行内所有请求共用一个结束时间
	now := time.Now()
	batch := opts.configFile != ""

	var (
		entries []metrics.BatchEntry
		single  *metrics.MetricRequest
	)
	if batch {
		if entries, err = batchEntries(cmd, opts, now); err != nil {
			return err
		}
	} else {
		flags := opts.Flags
		flags.Period = conf.Conf.QueryConfig.Period
		flags.StartTime = conf.Conf.QueryConfig.StartTime
		if single, err = metrics.NewRequestFromFlags(flags, now); err != nil {
			return err
		}
		if !single.HasSelector() {
			zap.L().Warn("neither statistic nor extended statistic set, records will carry no values")
		}
	}

	api, err := newStatisticsAPI(ctx, conf.Conf.AWSConfig)
	if err != nil {
		return err
	}
	var q metrics.Querier = metrics.NewExecutor(api, conf.Conf.QueryConfig.Timeout)
	if conf.Conf.CacheConfig.Enabled {
		gocache.Init(conf.Conf.CacheConfig)
		q = metrics.NewCachedExecutor(q)
	}

	// 客户端就绪后、发起查询前打开输出，csv文件在这里被截断
	out, err := sink.New(conf.Conf.OutputConfig, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var results []worker.Result
	if batch {
		results = worker.Run(ctx, q, entries, conf.Conf.QueryConfig.MaxConcurrency)
	} else {
		results = []worker.Result{worker.RunOne(ctx, q, single)}
	}
	stats := worker.Stats(results)
	defer logStats(&stats)

	for i := range results {
		if results[i].Err != nil {
			if !batch {
				return results[i].Err
			}
			continue
		}
		n, err := sink.WriteAll(out, metrics.NormalizeAll(results[i].Request, results[i].Datapoints))
		stats.NumRecords += uint64(n)
		if err != nil {
			return err
		}
	}
	return nil
}

// batchEntries 读取并校验批量配置，单个条目不合法时跳过，全部不合法时终止
func batchEntries(cmd *cobra.Command, opts *options, now time.Time) ([]metrics.BatchEntry, error) {
	for _, name := range []string{"name", "namespace", "statistic", "extended-statistic", "dimension"} {
		if cmd.Flags().Changed(name) {
			zap.L().Warn("flag ignored in batch mode", zap.String("flag", name))
		}
	}

	descs, err := metrics.LoadDescriptors(opts.configFile)
	if err != nil {
		return nil, err
	}
	if len(descs) == 0 {
		return nil, errors.Errorf("no metric found in %s", opts.configFile)
	}

	entries := metrics.BuildBatch(descs, metrics.Defaults{
		Period:    conf.Conf.QueryConfig.Period,
		StartTime: conf.Conf.QueryConfig.StartTime,
	}, now)
	if metrics.ValidEntries(entries) == 0 {
		return nil, errors.Wrapf(entries[0].Err, "all %d metrics in %s are invalid", len(entries), opts.configFile)
	}
	zap.L().Info("metric config loaded",
		zap.String("file", opts.configFile),
		zap.Int("entries", len(entries)),
		zap.Int("valid", metrics.ValidEntries(entries)))
	return entries, nil
}

func logStats(s *apimetrics.RunStats) {
	zap.L().Info("metric fetch finished",
		zap.Uint64("num_requests", s.NumRequests),
		zap.Uint64("num_succeeded", s.NumSucceeded),
		zap.Uint64("num_failed", s.NumFailed),
		zap.Uint64("num_rejected", s.NumRejected),
		zap.Uint64("num_records", s.NumRecords))
}
