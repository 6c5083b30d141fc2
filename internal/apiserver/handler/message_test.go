package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLarkCallbackEchoesChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	// The handshake path never touches the service.
	engine.POST("/messages/lark", NewMessageHandler(nil).LarkCallback)

	body := `{"type": "url_verification", "challenge": "ajls384kdj", "token": "xxx"}`
	req := httptest.NewRequest(http.MethodPost, "/messages/lark", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ajls384kdj", resp["challenge"])
}

func TestExtractLarkText(t *testing.T) {
	assert.Equal(t, "hello there", extractLarkText("text", `{"text": "hello there"}`))
	assert.Empty(t, extractLarkText("image", `{"image_key": "img_x"}`))
	assert.Empty(t, extractLarkText("text", `not json`))
}

func TestPaginationDefaultsAndClamping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(query string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return c
	}

	page, pageSize, offset, limit := pagination(newCtx(""))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, pageSize)
	assert.Equal(t, int64(0), offset)
	assert.Equal(t, int64(defaultPageSize), limit)

	page, pageSize, offset, limit = pagination(newCtx("page=3&page_size=10"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, pageSize)
	assert.Equal(t, int64(20), offset)
	assert.Equal(t, int64(10), limit)

	_, pageSize, _, _ = pagination(newCtx("page_size=100000"))
	assert.Equal(t, maxPageSize, pageSize)

	page, _, offset, _ = pagination(newCtx("page=-2"))
	assert.Equal(t, 1, page)
	assert.Equal(t, int64(0), offset)
}
