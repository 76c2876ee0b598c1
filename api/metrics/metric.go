package metrics

// MetricDescriptor 批量配置文件中的一条指标描述
// stat/extended_stat 为兼容旧配置的别名，见ApplyAliases
type MetricDescriptor struct {
	Name              string            `json:"name" yaml:"name" validate:"required"`
	Namespace         string            `json:"namespace" yaml:"namespace" validate:"required"`
	Statistic         string            `json:"statistic,omitempty" yaml:"statistic" validate:"omitempty,oneof=SampleCount Sum Maximum Average Minimum"`
	ExtendedStatistic string            `json:"extended_statistic,omitempty" yaml:"extended_statistic"`
	Dimensions        map[string]string `json:"dimensions,omitempty" yaml:"dimensions"`
	Period            int32             `json:"period,omitempty" yaml:"period"`
	StartTime         string            `json:"start_time,omitempty" yaml:"start_time"`

	Stat         string `json:"stat,omitempty" yaml:"stat" validate:"-"`
	ExtendedStat string `json:"extended_stat,omitempty" yaml:"extended_stat" validate:"-"`
}

// ApplyAliases 把别名字段合并到正式字段，正式字段优先
func (d *MetricDescriptor) ApplyAliases() {
	if d.Statistic == "" {
		d.Statistic = d.Stat
	}
	if d.ExtendedStatistic == "" {
		d.ExtendedStatistic = d.ExtendedStat
	}
	d.Stat, d.ExtendedStat = "", ""
}
