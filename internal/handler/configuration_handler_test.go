package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/middleware"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

var adminClaims = &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}

func newTestContext(method, path string, body interface{}, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	switch payload := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(payload))
	default:
		raw, _ := json.Marshal(payload)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Error   *appErrors.Error       `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type configurationServiceMock struct {
	listResp  []dto.ConfigurationItem
	updateKey string
	updateErr error
	bulkErr   error
}

func (m *configurationServiceMock) List(ctx context.Context) ([]dto.ConfigurationItem, error) {
	return m.listResp, nil
}

func (m *configurationServiceMock) Get(ctx context.Context, key string) (*dto.ConfigurationItem, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
}

func (m *configurationServiceMock) Update(ctx context.Context, key string, req dto.UpdateConfigurationRequest, actor *models.JWTClaims) (*dto.ConfigurationItem, error) {
	m.updateKey = key
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dto.ConfigurationItem{Key: key, Value: req.Value, Type: "NUMBER"}, nil
}

func (m *configurationServiceMock) BulkUpdate(ctx context.Context, req dto.BulkUpdateConfigurationRequest, actor *models.JWTClaims) ([]dto.ConfigurationItem, error) {
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	return []dto.ConfigurationItem{}, nil
}

func TestConfigurationHandlerUpdateUsesPathKey(t *testing.T) {
	svc := &configurationServiceMock{}
	handler := NewConfigurationHandler(svc)
	c, w := newTestContext(http.MethodPut, "/settings/credit_cost", dto.UpdateConfigurationRequest{Value: "120"}, adminClaims)
	c.Params = gin.Params{{Key: "key", Value: "credit_cost"}}

	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "credit_cost", svc.updateKey)
	var item dto.ConfigurationItem
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &item))
	assert.Equal(t, "120", item.Value)
}

func TestConfigurationHandlerUpdatePropagatesValidation(t *testing.T) {
	svc := &configurationServiceMock{updateErr: appErrors.Clone(appErrors.ErrValidation, "min_credits_per_cycle cannot exceed max_credits_per_cycle")}
	handler := NewConfigurationHandler(svc)
	c, w := newTestContext(http.MethodPut, "/settings/min_credits_per_cycle", dto.UpdateConfigurationRequest{Value: "40"}, adminClaims)
	c.Params = gin.Params{{Key: "key", Value: "min_credits_per_cycle"}}

	handler.Update(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
}

func TestConfigurationHandlerBulkInvalidBody(t *testing.T) {
	handler := NewConfigurationHandler(&configurationServiceMock{})
	c, w := newTestContext(http.MethodPut, "/settings", "invalid", adminClaims)

	handler.BulkUpdate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigurationHandlerGetNotFound(t *testing.T) {
	handler := NewConfigurationHandler(&configurationServiceMock{})
	c, w := newTestContext(http.MethodGet, "/settings/unknown", nil, adminClaims)
	c.Params = gin.Params{{Key: "key", Value: "unknown"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
