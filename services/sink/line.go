package sink

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	apimetrics "metric-fetch/api/metrics"
)

type lineSink struct {
	w      *bufio.Writer
	header []string
}

// NewLine 每条记录输出一行 key=value
func NewLine(w io.Writer) Sink {
	return &lineSink{w: bufio.NewWriter(w), header: apimetrics.RecordHeader()}
}

func (s *lineSink) Write(record apimetrics.OutputRecord) error {
	row := record.Row()
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.header[i])
		b.WriteByte('=')
		b.WriteString(quoteValue(v))
	}
	b.WriteByte('\n')
	_, err := s.w.WriteString(b.String())
	return err
}

// quoteValue 空值、含空格或需要转义的值按strconv.Quote输出，保证一条记录只占一行
func quoteValue(v string) string {
	q := strconv.Quote(v)
	if v == "" || strings.Contains(v, " ") || q[1:len(q)-1] != v {
		return q
	}
	return v
}

func (s *lineSink) Close() error {
	return s.w.Flush()
}
