package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/spacedash/pkg/cache"
	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/model"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	s3c "github.com/yeisme/spacedash/pkg/internal/storage/s3"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/queue"
	"github.com/yeisme/spacedash/pkg/usage"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newID 生成按时间有序的文件 ID.
func newID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// FileService 维护文件元数据，变更后使仪表盘缓存失效并发布事件.
type FileService struct {
	dbClient *dbc.Client
	s3Client *s3c.Client
	cache    *cache.Cache
	events   queue.Publisher
	classify usage.Classifier
	evCfg    configs.EventsConfig
}

func NewFileService(c context.Context) *FileService {
	cfg := configs.GetConfig()

	s := &FileService{
		dbClient: ctxPkg.GetDBClient(c),
		s3Client: ctxPkg.GetS3Client(c),
		events:   publisherOf(ctxPkg.GetMQClient(c)),
		classify: cfg.Usage.Classifier(),
		evCfg:    cfg.Events,
	}

	if kvc := ctxPkg.GetKVClient(c); kvc != nil {
		s.cache = DashboardCache(kvc)
	}

	return s
}

// Register 登记一条文件元数据，未指定分类时由分类器推断.
func (s *FileService) Register(ctx context.Context, user string, req types.RegisterFileRequest) (types.RecentFile, error) {
	if user == "" {
		return types.RecentFile{}, ErrUserRequired
	}

	if s.dbClient == nil {
		return types.RecentFile{}, ErrNoData
	}

	if req.Size < 0 {
		return types.RecentFile{}, fmt.Errorf("%w: negative size %d", usage.ErrInvalidRecord, req.Size)
	}

	name := strings.TrimSpace(req.Name)

	category := s.classify(name, req.ContentType)
	if req.Category != "" {
		c, ok := usage.ParseCategory(req.Category)
		if !ok {
			return types.RecentFile{}, fmt.Errorf("%w: unknown category %q", usage.ErrInvalidRecord, req.Category)
		}

		category = c
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != nil {
		createdAt = req.CreatedAt.UTC()
	}

	url := req.URL
	if url == "" && s.s3Client != nil {
		url = s.s3Client.ObjectURL(s3c.UserPrefix(user) + name)
	}

	f := model.Files{
		ID:          newID(createdAt),
		User:        user,
		Name:        name,
		Size:        req.Size,
		Category:    string(category),
		ContentType: req.ContentType,
		Extension:   usage.Extension(name),
		URL:         url,
		CreatedAt:   createdAt,
	}

	err := s.dbClient.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Files{}).Where(&model.Files{User: user, Name: name}).Count(&n).Error; err != nil {
			return err
		}

		if n > 0 {
			return fmt.Errorf("%w: %s", ErrFileExists, name)
		}

		return tx.Create(&f).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.RecentFile{}, fmt.Errorf("%w: %s", ErrFileExists, name)
	}

	if err != nil {
		return types.RecentFile{}, err
	}

	s.changed(ctx, user)

	if s.evCfg.Enabled && s.evCfg.File.Registered && s.events != nil {
		if err := queue.PublishFileRegistered(ctx, s.events, user, queue.FileRegisteredPayload{File: fileRef(&f)}); err != nil {
			s.warn(ctx, err, "publish file registered failed")
		}
	}

	return RecentView([]usage.FileRecord{f.ToRecord()})[0], nil
}

// Delete 删除文件元数据.
func (s *FileService) Delete(ctx context.Context, user, id string) error {
	if user == "" {
		return ErrUserRequired
	}

	if s.dbClient == nil {
		return ErrNoData
	}

	var f model.Files

	res := s.dbClient.WithContext(ctx).Where(&model.Files{ID: id, User: user}).Limit(1).Find(&f)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}

	if err := s.dbClient.WithContext(ctx).Delete(&f).Error; err != nil {
		return err
	}

	s.changed(ctx, user)

	if s.evCfg.Enabled && s.evCfg.File.Deleted && s.events != nil {
		if err := queue.PublishFileDeleted(ctx, s.events, user, queue.FileDeletedPayload{File: fileRef(&f)}); err != nil {
			s.warn(ctx, err, "publish file deleted failed")
		}
	}

	return nil
}

// Recent 返回最近登记的文件，排序与仪表盘一致.
func (s *FileService) Recent(ctx context.Context, user string, limit int) ([]types.RecentFile, error) {
	if user == "" {
		return nil, ErrUserRequired
	}

	if s.dbClient == nil {
		return nil, ErrNoData
	}

	var rows []model.Files

	q := s.dbClient.WithContext(ctx).Where(&model.Files{User: user}).Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}

	records := make([]usage.FileRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToRecord())
	}

	return RecentView(records), nil
}

// Users 返回所有登记过文件的用户.
func (s *FileService) Users(ctx context.Context) ([]string, error) {
	if s.dbClient == nil {
		return nil, ErrNoData
	}

	var users []string
	if err := s.dbClient.WithContext(ctx).Model(&model.Files{}).Distinct("user").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "user"}}).Pluck("user", &users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// changed 用户用量变化后删除缓存，失败只记录日志.
func (s *FileService) changed(ctx context.Context, user string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, s.cache.Key(user)); err != nil && !cache.IsMiss(err) {
		s.warn(ctx, err, "invalidate dashboard cache failed")
	}
}

func (s *FileService) warn(ctx context.Context, err error, msg string) {
	logger := ctxPkg.Logger(ctx, "file")
	logger.Warn().Err(err).Msg(msg)
}

func fileRef(f *model.Files) queue.FileRef {
	return queue.FileRef{ID: f.ID, Name: f.Name, Category: f.Category, Size: f.Size}
}
