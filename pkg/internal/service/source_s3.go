package service

import (
	"context"
	"fmt"
	"strings"

	s3c "github.com/yeisme/spacedash/pkg/internal/storage/s3"
	"github.com/yeisme/spacedash/pkg/usage"
)

// S3RecordSource 遍历对象存储中 <user>/ 前缀下的对象，按对象键分类.
type S3RecordSource struct {
	client   *s3c.Client
	classify usage.Classifier
}

// NewS3RecordSource 创建对象存储记录源，classify 为 nil 时使用默认分类器.
func NewS3RecordSource(client *s3c.Client, classify usage.Classifier) *S3RecordSource {
	if classify == nil {
		classify = usage.DefaultClassifier
	}

	return &S3RecordSource{client: client, classify: classify}
}

// Name 数据源名称.
func (s *S3RecordSource) Name() string { return "s3" }

// ListRecords 列举用户全部对象.
func (s *S3RecordSource) ListRecords(ctx context.Context, user string) ([]usage.FileRecord, error) {
	prefix := s3c.UserPrefix(user)

	var out []usage.FileRecord

	for obj, err := range s.client.Objects(ctx, user) {
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
		}

		name := strings.TrimPrefix(obj.Key, prefix)
		out = append(out, usage.FileRecord{
			ID:          obj.Key,
			Name:        name,
			Category:    s.classify(name, obj.ContentType),
			SizeBytes:   obj.Size,
			CreatedAt:   obj.LastModified,
			URL:         s.client.ObjectURL(obj.Key),
			Extension:   usage.Extension(name),
			ContentType: obj.ContentType,
		})
	}

	return out, nil
}
