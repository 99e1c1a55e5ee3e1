package models

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateID 生成UUID
func GenerateID() string {
	return uuid.New().String()
}

// GenerateOrderedID 生成按时间有序的ID（ULID），按ID排序即按创建顺序
func GenerateOrderedID() string {
	return ulid.Make().String()
}
