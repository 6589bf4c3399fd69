package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/yeisme/spacedash/pkg/cache"
	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/model"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/usage"
)

// QuotaService 读取与设置用户配额.
type QuotaService struct {
	dbClient     *dbc.Client
	defaultQuota int64
	cache        *cache.Cache
}

func NewQuotaService(c context.Context) *QuotaService {
	s := &QuotaService{
		dbClient:     ctxPkg.GetDBClient(c),
		defaultQuota: configs.GetConfig().Usage.DefaultQuotaBytes(),
	}

	if kvc := ctxPkg.GetKVClient(c); kvc != nil {
		s.cache = DashboardCache(kvc)
	}

	return s
}

// Get 返回用户配额，未设置时为默认配额.
func (s *QuotaService) Get(ctx context.Context, user string) (types.QuotaResponse, error) {
	if user == "" {
		return types.QuotaResponse{}, ErrUserRequired
	}

	if s.dbClient == nil {
		return types.QuotaResponse{}, ErrNoData
	}

	bytes, isDefault, err := NewDBQuotaSource(s.dbClient, s.defaultQuota, false).Quota(ctx, user)
	if err != nil {
		return types.QuotaResponse{}, fmt.Errorf("%w: %w", ErrNoData, err)
	}

	return quotaResponse(user, bytes, isDefault), nil
}

// Set 设置用户配额，bytes 必须为正.
func (s *QuotaService) Set(ctx context.Context, user string, bytes int64) (types.QuotaResponse, error) {
	if user == "" {
		return types.QuotaResponse{}, ErrUserRequired
	}

	if bytes <= 0 {
		return types.QuotaResponse{}, fmt.Errorf("%w: %d", usage.ErrInvalidQuota, bytes)
	}

	if s.dbClient == nil {
		return types.QuotaResponse{}, ErrNoData
	}

	q := model.Quota{User: user, Bytes: bytes, UpdatedAt: time.Now().UTC()}
	if err := s.dbClient.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user"}},
		DoUpdates: clause.AssignmentColumns([]string{"bytes", "updated_at"}),
	}).Create(&q).Error; err != nil {
		return types.QuotaResponse{}, fmt.Errorf("set quota: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cache.Key(user)); err != nil && !cache.IsMiss(err) {
			logger := ctxPkg.Logger(ctx, "quota")
			logger.Warn().Err(err).Str("user", user).Msg("invalidate dashboard cache failed")
		}
	}

	return quotaResponse(user, bytes, false), nil
}

func quotaResponse(user string, bytes int64, isDefault bool) types.QuotaResponse {
	return types.QuotaResponse{User: user, Bytes: bytes, Text: usage.FormatSize(bytes), Default: isDefault}
}
