package metrics

import (
	"os"
	"path/filepath"
	"strings"

	apimetrics "metric-fetch/api/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// json 与yaml.UnmarshalStrict一致，拒绝未知字段
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// LoadDescriptors 读取批量配置文件，.yaml/.yml按yaml解析，其余按json解析
// 读取或解析失败时整个运行终止
func LoadDescriptors(path string) ([]apimetrics.MetricDescriptor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read metric config file")
	}
	return ParseDescriptors(content, filepath.Ext(path))
}

// ParseDescriptors 按扩展名解析配置内容
func ParseDescriptors(content []byte, ext string) ([]apimetrics.MetricDescriptor, error) {
	var descs []apimetrics.MetricDescriptor
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(content, &descs); err != nil {
			return nil, errors.Wrap(err, "parse metric config yaml")
		}
	default:
		if err := json.Unmarshal(content, &descs); err != nil {
			return nil, errors.Wrap(err, "parse metric config json")
		}
	}
	return descs, nil
}
