// Package httpx 提供 HTTP 查询参数解析助手
package httpx

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
)

// ParseUintID 解析路径参数中的整型 ID
func ParseUintID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid id: %s", raw)
	}
	return uint(id), nil
}

// ParseUUIDID 解析路径参数中的 UUID
func ParseUUIDID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid UUID format: %s", raw)
	}
	return id, nil
}

// ParsePagination 解析 limit/offset 查询参数，缺省返回零值交由查询对象填充默认值
func ParsePagination(c *gin.Context) (limit int, offset int, err error) {
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperr.Validation("invalid limit value: %s", raw)
		}
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperr.Validation("invalid offset value: %s", raw)
		}
	}
	return limit, offset, nil
}

// QueryString 返回查询参数指针，空值返回 nil
func QueryString(c *gin.Context, key string) *string {
	if raw := c.Query(key); raw != "" {
		return &raw
	}
	return nil
}

// QueryBool 解析布尔查询参数，空值返回 nil
func QueryBool(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("invalid %s value: %s", key, raw)
	}
	return &v, nil
}

// QueryUint 解析无符号整型查询参数，空值返回 nil
func QueryUint(c *gin.Context, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation("invalid %s value: %s", key, raw)
	}
	u := uint(v)
	return &u, nil
}

// QueryTime 解析 RFC3339 时间查询参数，空值返回 nil
func QueryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.Validation("invalid %s value: %s", key, raw)
	}
	return &v, nil
}
