package cloudwatch

import (
	"context"

	"metric-fetch/conf"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LoadOptions 把AWSConfig转换为SDK的加载选项，凭证按profile从共享配置文件解析
func LoadOptions(cfg *conf.AWSConfig) []func(*config.LoadOptions) error {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	return opts
}

// NewClient 创建CloudWatch客户端
func NewClient(ctx context.Context, cfg *conf.AWSConfig) (*cloudwatch.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, LoadOptions(cfg)...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	zap.L().Debug("cloudwatch client created",
		zap.String("region", awsCfg.Region),
		zap.String("profile", cfg.Profile),
		zap.String("endpoint", cfg.Endpoint))
	return client, nil
}
