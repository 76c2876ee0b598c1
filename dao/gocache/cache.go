package gocache

import (
	"metric-fetch/conf"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var goCache *cache.Cache

// Init 初始化gocache
func Init(cfg *conf.CacheConfig) {
	goCache = cache.New(cfg.DefaultExpire, cfg.CleanupInterval)
	zap.L().Debug("gocache initialized",
		zap.Duration("default_expire", cfg.DefaultExpire),
		zap.Duration("cleanup_interval", cfg.CleanupInterval))
}

// SetDefault 设置k, v 使用默认过期时间
func SetDefault(k string, v interface{}) {
	if goCache == nil {
		return
	}
	goCache.SetDefault(k, v)
}

// Get get value
func Get(k string) (interface{}, bool) {
	if goCache == nil {
		return nil, false
	}
	return goCache.Get(k)
}

// Count 统计key个数
func Count() (cnt int) {
	if goCache == nil {
		return 0
	}
	cnt = goCache.ItemCount()
	return
}

// Flush 清空缓存
func Flush() {
	if goCache == nil {
		return
	}
	goCache.Flush()
}
