package usage

import "errors"

var (
	// ErrInvalidRecord 文件记录非法（大小为负）.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidQuota 配额非法（<= 0）.
	ErrInvalidQuota = errors.New("invalid quota")
)

// ErrInvalidSize 无法解析的大小字符串.
var ErrInvalidSize = errors.New("invalid size")
