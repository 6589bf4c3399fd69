package service

import (
	"context"
	"fmt"

	"github.com/yeisme/spacedash/pkg/internal/model"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	"github.com/yeisme/spacedash/pkg/usage"
)

// RecordSource 提供某个用户全部文件记录的快照.
type RecordSource interface {
	Name() string
	ListRecords(ctx context.Context, user string) ([]usage.FileRecord, error)
}

// StoreUsage 数据源上报的用量与配额.
type StoreUsage struct {
	UsedBytes  int64
	QuotaBytes int64
	// UsedKnown 数据源是否能独立给出已用字节，对象存储来源时为 false
	UsedKnown bool
}

// QuotaSource 提供用户配额与数据源视角的已用字节.
type QuotaSource interface {
	Name() string
	Usage(ctx context.Context, user string) (StoreUsage, error)
}

const defaultPageSize = 500

// DBRecordSource 分页读取 files 表.
type DBRecordSource struct {
	db       *dbc.Client
	pageSize int
}

// NewDBRecordSource 创建数据库记录源，pageSize <= 0 时使用默认值.
func NewDBRecordSource(db *dbc.Client, pageSize int) *DBRecordSource {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &DBRecordSource{db: db, pageSize: pageSize}
}

// Name 数据源名称.
func (s *DBRecordSource) Name() string { return "db" }

// ListRecords 以主键游标分页，避免大用户一次性加载.
func (s *DBRecordSource) ListRecords(ctx context.Context, user string) ([]usage.FileRecord, error) {
	var (
		out    []usage.FileRecord
		cursor string
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var page []model.Files

		q := s.db.WithContext(ctx).Where(&model.Files{User: user})
		if cursor != "" {
			q = q.Where("id > ?", cursor)
		}

		if err := q.Order("id").Limit(s.pageSize).Find(&page).Error; err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}

		for i := range page {
			out = append(out, page[i].ToRecord())
		}

		if len(page) < s.pageSize {
			return out, nil
		}

		cursor = page[len(page)-1].ID
	}
}

// DBQuotaSource 从 quotas 表读取配额，未设置时使用默认配额.
type DBQuotaSource struct {
	db           *dbc.Client
	defaultQuota int64
	countUsed    bool
}

// NewDBQuotaSource 创建配额源. countUsed 为 true 时同时汇总 files 表的已用字节.
func NewDBQuotaSource(db *dbc.Client, defaultQuota int64, countUsed bool) *DBQuotaSource {
	return &DBQuotaSource{db: db, defaultQuota: defaultQuota, countUsed: countUsed}
}

// Name 数据源名称.
func (s *DBQuotaSource) Name() string { return "quota" }

// Quota 返回用户配额以及是否为默认值.
func (s *DBQuotaSource) Quota(ctx context.Context, user string) (int64, bool, error) {
	var q model.Quota

	res := s.db.WithContext(ctx).Where(&model.Quota{User: user}).Limit(1).Find(&q)
	if res.Error != nil {
		return 0, false, fmt.Errorf("get quota: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return s.defaultQuota, true, nil
	}

	return q.Bytes, false, nil
}

// Usage 返回配额与已用字节.
func (s *DBQuotaSource) Usage(ctx context.Context, user string) (StoreUsage, error) {
	quota, _, err := s.Quota(ctx, user)
	if err != nil {
		return StoreUsage{}, err
	}

	out := StoreUsage{QuotaBytes: quota}
	if !s.countUsed {
		return out, nil
	}

	if err := s.db.WithContext(ctx).Model(&model.Files{}).
		Where(&model.Files{User: user}).
		Select("COALESCE(SUM(size), 0)").
		Scan(&out.UsedBytes).Error; err != nil {
		return StoreUsage{}, fmt.Errorf("sum file sizes: %w", err)
	}

	out.UsedKnown = true

	return out, nil
}
