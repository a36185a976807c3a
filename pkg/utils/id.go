package utils

import "github.com/segmentio/ksuid"

// NewID 生成按时间有序的 27 位主键
func NewID() string { return ksuid.New().String() }
