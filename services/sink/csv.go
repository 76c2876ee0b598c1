package sink

import (
	"encoding/csv"
	"os"
	"sync"

	apimetrics "metric-fetch/api/metrics"

	"github.com/pkg/errors"
)

type csvSink struct {
	path   string
	file   *os.File
	writer *csv.Writer

	once     sync.Once
	closeErr error
}

// NewCSV 以截断方式创建文件并写入表头
func NewCSV(path string) (Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create csv %s", path)
	}
	s := &csvSink{path: path, file: f, writer: csv.NewWriter(f)}
	if err = s.writer.Write(apimetrics.RecordHeader()); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "write csv header %s", path)
	}
	return s, nil
}

func (s *csvSink) Write(record apimetrics.OutputRecord) error {
	if err := s.writer.Write(record.Row()); err != nil {
		return errors.Wrapf(err, "write csv row %s", s.path)
	}
	return nil
}

// Close flush并关闭文件，重复调用只执行一次
func (s *csvSink) Close() error {
	s.once.Do(func() {
		s.writer.Flush()
		if err := s.writer.Error(); err != nil {
			s.closeErr = errors.Wrapf(err, "flush csv %s", s.path)
		}
		if err := s.file.Close(); err != nil && s.closeErr == nil {
			s.closeErr = errors.Wrapf(err, "close csv %s", s.path)
		}
	})
	return s.closeErr
}
