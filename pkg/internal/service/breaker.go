package service

import (
	"context"
	"errors"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/yeisme/spacedash/pkg/configs"
	nlog "github.com/yeisme/spacedash/pkg/log"
	"github.com/yeisme/spacedash/pkg/usage"
)

var (
	breakersMu sync.Mutex
	// 熔断器按数据源名称在进程内共享，服务实例按请求创建
	breakers = map[string]*gobreaker.CircuitBreaker{}
)

// breakerFor 返回数据源对应的熔断器.
func breakerFor(name string, cfg configs.CircuitBreakerConfig) *gobreaker.CircuitBreaker {
	breakersMu.Lock()
	defer breakersMu.Unlock()

	if cb, ok := breakers[name]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "source-" + name,
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    cfg.Interval(),
		Timeout:     cfg.Timeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		// 调用方取消不算数据源故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			nlog.Logger().Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("source circuit breaker state changed")
		},
	})
	breakers[name] = cb

	return cb
}

// BreakerRecordSource 为记录源加上熔断保护.
type BreakerRecordSource struct {
	RecordSource
	cb *gobreaker.CircuitBreaker
}

// NewBreakerRecordSource 包装记录源，熔断未启用时原样返回.
func NewBreakerRecordSource(src RecordSource, cfg configs.CircuitBreakerConfig) RecordSource {
	if !cfg.Enabled {
		return src
	}

	return &BreakerRecordSource{RecordSource: src, cb: breakerFor(src.Name(), cfg)}
}

// ListRecords 在熔断器内调用底层数据源.
func (b *BreakerRecordSource) ListRecords(ctx context.Context, user string) ([]usage.FileRecord, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.RecordSource.ListRecords(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return v.([]usage.FileRecord), nil
}

// BreakerQuotaSource 为配额源加上熔断保护.
type BreakerQuotaSource struct {
	QuotaSource
	cb *gobreaker.CircuitBreaker
}

// NewBreakerQuotaSource 包装配额源，熔断未启用时原样返回.
func NewBreakerQuotaSource(src QuotaSource, cfg configs.CircuitBreakerConfig) QuotaSource {
	if !cfg.Enabled {
		return src
	}

	return &BreakerQuotaSource{QuotaSource: src, cb: breakerFor(src.Name(), cfg)}
}

// Usage 在熔断器内调用底层数据源.
func (b *BreakerQuotaSource) Usage(ctx context.Context, user string) (StoreUsage, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.QuotaSource.Usage(ctx, user)
	})
	if err != nil {
		return StoreUsage{}, err
	}

	return v.(StoreUsage), nil
}
