package metrics

import "reflect"

// OutputRecord 每个数据点对应的一条输出记录，所有字段都是展示用字符串，缺失值为空串
type OutputRecord struct {
	Name                   string `json:"name" csv:"name"`
	Dimensions             string `json:"dimensions" csv:"dimensions"`
	Timestamp              string `json:"timestamp" csv:"timestamp"`
	Statistic              string `json:"statistic" csv:"statistic"`
	StatisticValue         string `json:"statistic_value" csv:"statistic_value"`
	ExtendedStatistic      string `json:"extended_statistic" csv:"extended_statistic"`
	ExtendedStatisticValue string `json:"extended_statistic_value" csv:"extended_statistic_value"`
}

var recordHeader = func() []string {
	t := reflect.TypeOf(OutputRecord{})
	header := make([]string, t.NumField())
	for i := range header {
		header[i] = t.Field(i).Tag.Get("csv")
	}
	return header
}()

// RecordHeader csv表头，由OutputRecord的字段tag生成
func RecordHeader() []string {
	h := make([]string, len(recordHeader))
	copy(h, recordHeader)
	return h
}

// Row 按表头顺序返回字段值
func (r OutputRecord) Row() []string {
	v := reflect.ValueOf(r)
	row := make([]string, v.NumField())
	for i := range row {
		row[i] = v.Field(i).String()
	}
	return row
}
