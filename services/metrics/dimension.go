package metrics

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Dimension 维度过滤条件
type Dimension struct {
	Name  string
	Value string
}

// ParseDimension 解析命令行的 key=value，只按第一个=切分，value中可以再出现=
func ParseDimension(token string) (Dimension, error) {
	i := strings.IndexByte(token, '=')
	if i < 0 {
		return Dimension{}, errors.Wrapf(ErrInvalidDimensionToken, "%q: want key=value", token)
	}
	if i == 0 {
		return Dimension{}, errors.Wrapf(ErrInvalidDimensionToken, "%q: empty key", token)
	}
	return Dimension{Name: token[:i], Value: token[i+1:]}, nil
}

// ParseDimensions 按输入顺序解析，同一个key不能出现两次
func ParseDimensions(tokens []string) ([]Dimension, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	dims := make([]Dimension, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		d, err := ParseDimension(token)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[d.Name]; ok {
			return nil, errors.Wrapf(ErrInvalidDimensionToken, "%q: duplicate key %q", token, d.Name)
		}
		seen[d.Name] = struct{}{}
		dims = append(dims, d)
	}
	return dims, nil
}

// DimensionsFromMap 配置文件中的维度，按key排序保证查询参数稳定
func DimensionsFromMap(m map[string]string) []Dimension {
	if len(m) == 0 {
		return nil
	}
	dims := make([]Dimension, 0, len(m))
	for k, v := range m {
		dims = append(dims, Dimension{Name: k, Value: v})
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i].Name < dims[j].Name })
	return dims
}

// FormatDimensions k=v;k2=v2
func FormatDimensions(dims []Dimension) string {
	if len(dims) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range dims {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(d.Name)
		b.WriteByte('=')
		b.WriteString(d.Value)
	}
	return b.String()
}
