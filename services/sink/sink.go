package sink

import (
	"io"

	apimetrics "metric-fetch/api/metrics"
	"metric-fetch/conf"

	"go.uber.org/zap"
)

// Sink 输出记录，只在所有查询完成后由单个goroutine使用
type Sink interface {
	Write(record apimetrics.OutputRecord) error
	Close() error
}

// New 根据运行配置选择输出方式，运行期间不再改变
func New(cfg *conf.OutputConfig, stdout io.Writer) (Sink, error) {
	if cfg.CSV {
		zap.L().Info("write records to csv", zap.String("path", cfg.CSVPath))
		return NewCSV(cfg.CSVPath)
	}
	return NewLine(stdout), nil
}

// WriteAll 依次写入，返回成功写入的条数
func WriteAll(s Sink, records []apimetrics.OutputRecord) (n int, err error) {
	for i := range records {
		if err = s.Write(records[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
