// Package storage 聚合用量统计依赖的外部存储：文件元数据库、对象存储、缓存与消息队列.
//
// Example:
//
//	mgr, err := storage.New(ctx, configs.GetConfig())
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	dbClient := mgr.GetDBClient()
//	kvClient := mgr.GetKVClient()
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yeisme/spacedash/pkg/configs"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	kvc "github.com/yeisme/spacedash/pkg/internal/storage/kv"
	mqc "github.com/yeisme/spacedash/pkg/internal/storage/mq"
	s3c "github.com/yeisme/spacedash/pkg/internal/storage/s3"
	nlog "github.com/yeisme/spacedash/pkg/log"
)

// Manager 聚合所有存储资源，S3 仅在启用或作为记录来源时创建.
type Manager struct {
	DB *dbc.Client
	S3 *s3c.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 使用全局配置初始化默认 Manager，重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = New(ctx, configs.GetConfig())
	})

	return mgr, mgrErr
}

// New 按配置创建 Manager，任一组件失败时关闭已创建的组件.
func New(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	var err error

	m.DB, err = dbc.New(ctx, cfg.DB, dbc.Options{Debug: cfg.Server.Debug, Metrics: cfg.Metrics.Enabled})
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	if cfg.S3.Enabled || cfg.Usage.Source == "s3" {
		if m.S3, err = s3c.New(ctx, cfg.S3); err != nil {
			return nil, errors.Join(fmt.Errorf("init s3: %w", err), m.Close())
		}
	}

	if m.KV, err = kvc.New(ctx, cfg.KV); err != nil {
		return nil, errors.Join(fmt.Errorf("init kv: %w", err), m.Close())
	}

	if m.MQ, err = mqc.New(ctx, cfg.MQ, mqc.Options{Metrics: cfg.Metrics.Enabled}); err != nil {
		return nil, errors.Join(fmt.Errorf("init mq: %w", err), m.Close())
	}

	nlog.Logger().Info().
		Str("db", cfg.DB.GetDBType()).
		Bool("s3", m.S3 != nil).
		Str("kv", string(m.KV.Type)).
		Str("mq", string(m.MQ.Type())).
		Msg("storage manager initialized")

	return m, nil
}

// GetS3Client 获取 S3 客户端，未启用时为 nil.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 逆序关闭所有已创建的组件.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
