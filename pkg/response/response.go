// Package response 提供统一的 HTTP 响应封装与业务错误到状态码的映射
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
)

// Body 统一响应体
type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListData 列表响应数据
type ListData struct {
	Items  any   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Success 返回 200 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: "ok", Data: data})
}

// Created 返回 201 创建成功响应
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Body{Code: 0, Message: "ok", Data: data})
}

// List 返回带分页信息的列表响应
func List(c *gin.Context, items any, total int64, limit, offset int) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: "ok", Data: ListData{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}})
}

// Error 将业务错误映射为 HTTP 响应。
// 校验失败 -> 422，唯一冲突/状态非法/不可变字段 -> 409，未找到 -> 404，其余 -> 500
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case apperr.KindDuplicate, apperr.KindInvalidState, apperr.KindImmutable:
		status = http.StatusConflict
		message = err.Error()
	case apperr.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	}

	c.JSON(status, Body{Code: status, Message: message})
}

// ErrorWithStatus 按指定状态码返回错误响应
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Code: status, Message: message})
}

// NotFound 返回 404 响应
func NotFound(c *gin.Context, message string) {
	ErrorWithStatus(c, http.StatusNotFound, message)
}
