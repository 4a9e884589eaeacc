package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/strategydesk/internal/strategy/application"
	"github.com/wyfcoding/strategydesk/internal/strategy/domain"
	"github.com/wyfcoding/strategydesk/internal/strategy/infrastructure/persistence"
	"github.com/wyfcoding/strategydesk/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Strategy{}))

	router := gin.New()
	api := router.Group("/api/v1")
	NewStrategyHandler(application.NewStrategyService(persistence.NewStrategyRepository(db))).RegisterRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStrategyLifecycleScenario(t *testing.T) {
	router := setupRouter(t)

	// 创建成功返回 201 与服务端分配的 id
	rec := doJSON(t, router, http.MethodPost, "/api/v1/strategies", gin.H{
		"name":      "Momentum",
		"is_active": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	data := created.Data.(map[string]any)
	assert.NotZero(t, data["id"])
	assert.Equal(t, "Momentum", data["name"])

	// 同名重复创建返回 409
	rec = doJSON(t, router, http.MethodPost, "/api/v1/strategies", gin.H{"name": "Momentum"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 按名称过滤，total 为 1
	rec = doJSON(t, router, http.MethodGet, "/api/v1/strategies?name=Momentum", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	list := listed.Data.(map[string]any)
	assert.Equal(t, float64(1), list["total"])
}

func TestCreateStrategyValidationFailure(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/strategies", gin.H{"description": "no name"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetStrategyNotFound(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/strategies/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStrategyBadID(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/strategies/not-a-number", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPatchStrategy(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/strategies", gin.H{"name": "Momentum"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.(map[string]any)["id"].(float64)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/strategies/1", gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	data := updated.Data.(map[string]any)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, false, data["is_active"])
	assert.Equal(t, "Momentum", data["name"])
}

func TestDeleteStrategy(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/strategies", gin.H{"name": "Momentum"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/strategies/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/strategies/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
