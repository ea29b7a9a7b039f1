package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditTrail writes best-effort audit entries. Failures are logged, never returned.
type auditTrail struct {
	repo   auditLogger
	logger *zap.Logger
	source string
}

func newAuditTrail(repo auditLogger, logger *zap.Logger, source string) auditTrail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return auditTrail{repo: repo, logger: logger, source: source}
}

func (a auditTrail) record(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID string, oldValue, newValue interface{}) {
	if a.repo == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     action,
		Resource:   resource,
		ResourceID: strPtr(resourceID),
		OldValues:  marshalAudit(oldValue),
		NewValues:  marshalAudit(newValue),
		IPAddress:  "system",
		UserAgent:  a.source,
	}
	if err := a.repo.CreateAuditLog(ctx, entry); err != nil {
		a.logger.Warn("failed to record audit", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}

func marshalAudit(value interface{}) []byte {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return raw
}

func userIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	return &actor.UserID
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	result := value
	return &result
}
