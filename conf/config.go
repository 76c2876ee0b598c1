package conf

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Conf 保存配置的全局变量
var Conf = new(Config)

// Config 配置入口
type Config struct {
	*AppConfig    `mapstructure:"app"`
	*LogConfig    `mapstructure:"log"`
	*AWSConfig    `mapstructure:"aws"`
	*QueryConfig  `mapstructure:"query"`
	*CacheConfig  `mapstructure:"cache"`
	*OutputConfig `mapstructure:"output"`
}

// AppConfig 项目配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Mode    string
	Version string `mapstructure:"version"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// AWSConfig 监控API客户端配置，凭证由SDK按profile解析
type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Profile  string `mapstructure:"profile"`
	Endpoint string `mapstructure:"endpoint"`
}

// QueryConfig 查询默认值
type QueryConfig struct {
	Period         int32         `mapstructure:"period"`
	StartTime      string        `mapstructure:"start_time"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// CacheConfig 同一次运行内的查询结果缓存
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultExpire   time.Duration `mapstructure:"default_expire"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// OutputConfig 输出配置，运行开始时确定，整个运行期间不变
type OutputConfig struct {
	CSV     bool   `mapstructure:"csv"`
	CSVPath string `mapstructure:"csv_path"`
}

// Version 版本号，构建时可通过ldflags覆盖
var Version = "0.1.0"

const (
	// DefaultRegion 未指定region时使用
	DefaultRegion = "ap-south-1"
	// DefaultCSVPath csv输出文件
	DefaultCSVPath = "metric_dump.csv"

	envPrefix = "METRIC_FETCH"
)

// flagKeys 命令行flag与配置项的对应关系
var flagKeys = map[string]string{
	"region":     "aws.region",
	"profile":    "aws.profile",
	"endpoint":   "aws.endpoint",
	"period":     "query.period",
	"start-time": "query.start_time",
	"timeout":    "query.timeout",
	"csv":        "output.csv",
	"csv-path":   "output.csv_path",
	"log-level":  "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "metric-fetch")
	v.SetDefault("app.version", Version)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.filename", "./logs/metric-fetch.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("aws.region", DefaultRegion)
	// 为空时由SDK按默认凭证链解析
	v.SetDefault("aws.profile", os.Getenv("AWS_DEFAULT_PROFILE"))
	v.SetDefault("aws.endpoint", "")

	v.SetDefault("query.period", 300)
	v.SetDefault("query.start_time", "d:20")
	v.SetDefault("query.timeout", 30*time.Second)
	v.SetDefault("query.max_concurrency", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.default_expire", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("output.csv", false)
	v.SetDefault("output.csv_path", DefaultCSVPath)
}

// Init 初始化配置
// 优先级：命令行flag > 环境变量 > 配置文件 > 默认值
// cfgFile为空时按GO_ENV查找./conf/下的配置文件，找不到配置文件不算错误
func Init(cfgFile string, flags *pflag.FlagSet) (err error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	env := os.Getenv("GO_ENV")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		name := env
		if name == "" {
			name = "default"
		}
		v.SetConfigName(name)
		v.SetConfigType("yml")
		v.AddConfigPath(filepath.Join(".", "conf"))
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "viper.ReadInConfig() failed")
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err = v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}

	// 反序列化配置到全局变量Conf中
	c := new(Config)
	if err = v.Unmarshal(c); err != nil {
		return errors.Wrap(err, "viper.Unmarshal failed")
	}
	c.Mode = env
	if c.OutputConfig.CSVPath == "" {
		c.OutputConfig.CSVPath = DefaultCSVPath
	}

	Conf = c
	return nil
}
