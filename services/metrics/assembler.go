package metrics

import (
	"bytes"
	"strconv"
)

// Signature 组装查询签名，相同签名的请求查询结果相同
// 格式: "namespace"/"name"{"k"="v","k2"="v2"}|stat|"ext"|period|start|end
// 字符串字段均经过strconv.Quote，不同的维度组合不会得到相同的签名
func Signature(req *MetricRequest) string {
	var b bytes.Buffer
	b.WriteString(strconv.Quote(req.Namespace))
	b.WriteByte('/')
	b.WriteString(strconv.Quote(req.Name))
	b.WriteString(`{`)
	for i, d := range req.Dimensions {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(d.Name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(d.Value))
	}
	b.WriteString(`}`)

	b.WriteByte('|')
	b.WriteString(string(req.Statistic))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(req.ExtendedStatistic))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(int64(req.Period), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(req.Start.Unix(), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(req.End.Unix(), 10))
	return b.String()
}
