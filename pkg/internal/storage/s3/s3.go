// Package s3 处理对象存储连接，文件按 <user>/ 前缀存放在单个桶中.
package s3

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/spacedash/pkg/configs"
	nlog "github.com/yeisme/spacedash/pkg/log"
)

// Client 包装 MinIO 客户端.
type Client struct {
	*minio.Client
	cfg configs.S3Config
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg configs.S3Config) (*Client, error) {
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		cfg.UseSSL = u.Scheme == "https"
		cfg.Endpoint = endpoint
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("spacedash", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &Client{Client: cli, cfg: cfg}, nil
}

// UserPrefix 返回用户对象前缀.
func UserPrefix(user string) string {
	return strings.Trim(user, "/") + "/"
}

// Objects 递归遍历用户前缀下的对象，遍历错误作为第二个值返回.
func (c *Client) Objects(ctx context.Context, user string) iter.Seq2[minio.ObjectInfo, error] {
	return func(yield func(minio.ObjectInfo, error) bool) {
		// 提前结束遍历时取消后台列举
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		opts := minio.ListObjectsOptions{
			Prefix:    UserPrefix(user),
			Recursive: true,
		}

		for obj := range c.ListObjects(ctx, c.cfg.BucketName, opts) {
			if obj.Err != nil {
				yield(minio.ObjectInfo{}, obj.Err)
				return
			}

			// 跳过目录占位对象
			if strings.HasSuffix(obj.Key, "/") {
				continue
			}

			if !yield(obj, nil) {
				return
			}
		}
	}
}

// ObjectURL 返回对象的访问地址.
func (c *Client) ObjectURL(key string) string {
	return c.cfg.ObjectURL(key)
}

// Bucket 返回桶名.
func (c *Client) Bucket() string { return c.cfg.BucketName }

// HealthCheck 通过检查桶是否存在验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	ok, err := c.BucketExists(ctx, c.cfg.BucketName)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s not found", c.cfg.BucketName)
	}

	return nil
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}
