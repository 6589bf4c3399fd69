package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/spacedash/pkg/cache"
	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/storage/kv"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/metrics"
	"github.com/yeisme/spacedash/pkg/queue"
	"github.com/yeisme/spacedash/pkg/tracing"
	"github.com/yeisme/spacedash/pkg/usage"
)

// 同一缓存键的并发构建合并为一次.
var dashboardBuilds singleflight.Group

// Snapshot 一次统计使用的记录快照及其聚合结果.
type Snapshot struct {
	User      string
	Records   []usage.FileRecord
	Summaries usage.Summaries
	Totals    usage.UsageTotals
	Store     StoreUsage
}

// DashboardService 构建仪表盘数据.
type DashboardService struct {
	records RecordSource
	quotas  QuotaSource
	agg     *usage.Aggregator
	cache   *cache.Cache
	events  queue.Publisher
	cfg     configs.UsageConfig
	evCfg   configs.EventsConfig
}

// DashboardOption 覆盖默认依赖.
type DashboardOption func(*DashboardService)

// WithRecordSource 使用指定的记录源.
func WithRecordSource(src RecordSource) DashboardOption {
	return func(s *DashboardService) { s.records = src }
}

// WithQuotaSource 使用指定的配额源.
func WithQuotaSource(src QuotaSource) DashboardOption {
	return func(s *DashboardService) { s.quotas = src }
}

// WithCache 使用指定的缓存，nil 表示不缓存.
func WithCache(c *cache.Cache) DashboardOption {
	return func(s *DashboardService) { s.cache = c }
}

// DashboardCache 返回仪表盘结果缓存.
func DashboardCache(store kv.KVStore) *cache.Cache {
	return cache.NewCache(store, cache.WithPrefix("dashboard"))
}

// NewDashboardService 从上下文中的存储管理器和全局配置创建服务.
func NewDashboardService(c context.Context, opts ...DashboardOption) *DashboardService {
	cfg := configs.GetConfig()

	s := &DashboardService{
		agg:    usage.New(cfg.Usage.AggregatorOptions()...),
		events: publisherOf(ctxPkg.GetMQClient(c)),
		cfg:    cfg.Usage,
		evCfg:  cfg.Events,
	}

	if records, quotas := defaultSources(c, cfg); records != nil {
		s.records = NewBreakerRecordSource(records, cfg.CircuitBreaker)
		s.quotas = NewBreakerQuotaSource(quotas, cfg.CircuitBreaker)
	}

	if kvc := ctxPkg.GetKVClient(c); kvc != nil {
		s.cache = DashboardCache(kvc)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// defaultSources 按 usage.source 选择记录源，元数据库不可用时返回 nil.
func defaultSources(c context.Context, cfg *configs.AppConfig) (RecordSource, QuotaSource) {
	dbClient := ctxPkg.GetDBClient(c)
	if dbClient == nil {
		return nil, nil
	}

	if cfg.Usage.Source == "s3" {
		if s3Client := ctxPkg.GetS3Client(c); s3Client != nil {
			return NewS3RecordSource(s3Client, cfg.Usage.Classifier()),
				NewDBQuotaSource(dbClient, cfg.Usage.DefaultQuotaBytes(), false)
		}
	}

	return NewDBRecordSource(dbClient, cfg.DB.PageSize),
		NewDBQuotaSource(dbClient, cfg.Usage.DefaultQuotaBytes(), true)
}

// Aggregator 返回使用的聚合器.
func (s *DashboardService) Aggregator() *usage.Aggregator { return s.agg }

// Compute 并发读取记录与配额，并对同一份快照做聚合.
// 任一数据源失败时返回 ErrNoData，不会把不完整的数据交给聚合器.
func (s *DashboardService) Compute(ctx context.Context, user string) (Snapshot, error) {
	if user == "" {
		return Snapshot{}, ErrUserRequired
	}

	if s.records == nil || s.quotas == nil {
		return Snapshot{}, fmt.Errorf("%w: no record source configured", ErrNoData)
	}

	var (
		records []usage.FileRecord
		store   StoreUsage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.records.ListRecords(gctx, user)
		if err != nil {
			metrics.SourceErrors.WithLabelValues(s.records.Name()).Inc()
			return fmt.Errorf("%s: %w", s.records.Name(), err)
		}

		records = r

		return nil
	})
	g.Go(func() error {
		u, err := s.quotas.Usage(gctx, user)
		if err != nil {
			metrics.SourceErrors.WithLabelValues(s.quotas.Name()).Inc()
			return fmt.Errorf("%s: %w", s.quotas.Name(), err)
		}

		store = u

		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrNoData, err)
	}

	sums, err := s.agg.ComputeCategorySummaries(records)
	if err != nil {
		return Snapshot{}, err
	}

	totals, err := s.agg.ComputeUsageTotals(records, store.QuotaBytes)
	if err != nil {
		return Snapshot{}, err
	}

	if s.cfg.DriftWarn && store.UsedKnown && store.UsedBytes != totals.UsedBytes {
		logger := ctxPkg.Logger(ctx, "dashboard")
		logger.Warn().
			Str("user", user).
			Int64("store_used", store.UsedBytes).
			Int64("record_sum", totals.UsedBytes).
			Msg("store reported usage differs from record sum")
	}

	return Snapshot{User: user, Records: records, Summaries: sums, Totals: totals, Store: store}, nil
}

// Build 返回用户的仪表盘，结果按 usage.cache_ttl 缓存.
func (s *DashboardService) Build(ctx context.Context, user string) (types.Dashboard, error) {
	if user == "" {
		return types.Dashboard{}, ErrUserRequired
	}

	ctx, span := tracing.StartSpan(ctx, "dashboard.build", trace.WithAttributes(attribute.String("user", user)))
	defer span.End()

	if s.cache == nil {
		d, err := s.build(ctx, user)
		tracing.RecordError(span, err)

		return d, err
	}

	// 合并的构建不继承单个请求的取消，每个调用方只按自己的 ctx 放弃等待
	key := s.cache.Key(user)
	ch := dashboardBuilds.DoChan(s.flightKey(key), func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.BuildTimeoutOrDefault())
		defer cancel()

		built := false

		d, err := cache.GetOrSet(bctx, s.cache, key, func() (types.Dashboard, error) {
			built = true
			return s.build(bctx, user)
		}, s.cfg.CacheTTL)
		if err == nil && !built {
			metrics.DashboardBuilds.WithLabelValues("cached").Inc()
		}

		return d, err
	})

	select {
	case <-ctx.Done():
		err := fmt.Errorf("%w: %w", ErrNoData, ctx.Err())
		tracing.RecordError(span, err)

		return types.Dashboard{}, err
	case res := <-ch:
		if res.Err != nil {
			tracing.RecordError(span, res.Err)
			return types.Dashboard{}, res.Err
		}

		return res.Val.(types.Dashboard), nil
	}
}

// flightKey 合并键，数据源不同的服务不会共享一次构建.
func (s *DashboardService) flightKey(key string) string {
	name := ""
	if s.records != nil {
		name = s.records.Name()
	}

	return key + "\x00" + name
}

// Invalidate 删除用户的仪表盘缓存.
func (s *DashboardService) Invalidate(ctx context.Context, user string) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Delete(ctx, s.cache.Key(user))
}

func (s *DashboardService) build(ctx context.Context, user string) (types.Dashboard, error) {
	start := time.Now()
	snap, err := s.Compute(ctx, user)

	metrics.DashboardDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DashboardBuilds.WithLabelValues(resultLabel(err)).Inc()
		return types.Dashboard{}, err
	}

	metrics.DashboardBuilds.WithLabelValues("ok").Inc()
	metrics.ObserveUsage(user, snap.Totals, snap.Summaries)

	if s.evCfg.Enabled && s.evCfg.Usage.Computed && s.events != nil {
		payload := queue.UsageComputedPayload{
			UsedBytes:    snap.Totals.UsedBytes,
			QuotaBytes:   snap.Totals.QuotaBytes,
			UsedFraction: snap.Totals.UsedFraction,
			Categories:   categoryBytes(snap.Summaries),
		}
		if err := queue.PublishUsageComputed(ctx, s.events, user, payload); err != nil {
			logger := ctxPkg.Logger(ctx, "dashboard")
			logger.Warn().Err(err).Str("user", user).Msg("publish usage computed failed")
		}
	}

	return s.Dashboard(snap), nil
}

// Dashboard 将统计快照转换为展示数据.
func (s *DashboardService) Dashboard(snap Snapshot) types.Dashboard {
	return types.Dashboard{
		User:        snap.User,
		Summary:     SummaryCards(snap.Summaries, s.agg.Categories()),
		Totals:      TotalsView(snap.Totals),
		Recent:      RecentView(usage.RecentFiles(snap.Records, s.cfg.RecentLimit)),
		GeneratedAt: time.Now().UTC(),
	}
}

// SummaryCards 按分类顺序生成卡片，没有展示信息的分类被省略.
func SummaryCards(sums usage.Summaries, order []usage.Category) []types.SummaryCard {
	cards := make([]types.SummaryCard, 0, len(order))

	for _, sum := range sums.Ordered(order) {
		d, ok := usage.Descriptor(sum.Category)
		if !ok {
			continue
		}

		cards = append(cards, types.SummaryCard{
			Category:  string(sum.Category),
			Title:     d.Title,
			URL:       d.URL,
			Color:     d.Color,
			Icon:      d.Icon,
			TotalSize: sum.TotalSizeBytes,
			Size:      usage.FormatSize(sum.TotalSizeBytes),
			Count:     sum.ElementCount,
			LatestAt:  sum.LatestAt,
		})
	}

	return cards
}

// TotalsView 总用量展示数据.
func TotalsView(t usage.UsageTotals) types.Totals {
	return types.Totals{
		Used:          t.UsedBytes,
		Quota:         t.QuotaBytes,
		Available:     t.AvailableBytes(),
		UsedFraction:  t.UsedFraction,
		UsedPercent:   int(math.Round(t.UsedFraction * 100)),
		UsedText:      usage.FormatSize(t.UsedBytes),
		QuotaText:     usage.FormatSize(t.QuotaBytes),
		AvailableText: usage.FormatSize(t.AvailableBytes()),
		OverQuota:     t.OverQuota(),
	}
}

// RecentView 最近文件展示数据.
func RecentView(records []usage.FileRecord) []types.RecentFile {
	out := make([]types.RecentFile, 0, len(records))
	for _, r := range records {
		out = append(out, types.RecentFile{
			ID:        r.ID,
			Name:      r.Name,
			Category:  string(r.Category),
			Extension: r.Extension,
			Size:      r.SizeBytes,
			SizeText:  usage.FormatSize(r.SizeBytes),
			URL:       r.URL,
			CreatedAt: r.CreatedAt,
		})
	}

	return out
}

func categoryBytes(sums usage.Summaries) map[string]int64 {
	out := make(map[string]int64, len(sums))
	for c, s := range sums {
		out[string(c)] = s.TotalSizeBytes
	}

	return out
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, usage.ErrInvalidRecord), errors.Is(err, usage.ErrInvalidQuota):
		return "invalid"
	default:
		return "error"
	}
}
