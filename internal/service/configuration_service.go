package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type configurationRepository interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error)
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
	BulkUpsert(ctx context.Context, cfgs []models.Configuration) error
}

type allowedConfiguration struct {
	Key         string
	Type        models.ConfigurationType
	Description string
}

var allowedConfigurationKeys = []string{
	models.SettingCreditCost,
	models.SettingMaxCreditsPerCycle,
	models.SettingMinCreditsPerCycle,
	models.SettingLateSurchargeRate,
	models.SettingInstitutionName,
}

var allowedConfigurations = map[string]allowedConfiguration{
	models.SettingCreditCost: {
		Key:         models.SettingCreditCost,
		Type:        models.ConfigurationTypeNumber,
		Description: "Amount charged per enrolled credit",
	},
	models.SettingMaxCreditsPerCycle: {
		Key:         models.SettingMaxCreditsPerCycle,
		Type:        models.ConfigurationTypeInteger,
		Description: "Maximum credits a student may enroll in one period",
	},
	models.SettingMinCreditsPerCycle: {
		Key:         models.SettingMinCreditsPerCycle,
		Type:        models.ConfigurationTypeInteger,
		Description: "Minimum credits required for a regular enrollment",
	},
	models.SettingLateSurchargeRate: {
		Key:         models.SettingLateSurchargeRate,
		Type:        models.ConfigurationTypeNumber,
		Description: "Multiplier applied to late enrollments",
	},
	models.SettingInstitutionName: {
		Key:         models.SettingInstitutionName,
		Type:        models.ConfigurationTypeString,
		Description: "Institution name printed on enrollment documents",
	},
}

var policyKeys = []string{
	models.SettingCreditCost,
	models.SettingMaxCreditsPerCycle,
	models.SettingMinCreditsPerCycle,
	models.SettingLateSurchargeRate,
}

// ConfigurationService is the only reader of business settings. Values live in the
// configurations table; there are no compiled-in fallbacks.
type ConfigurationService struct {
	repo      configurationRepository
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConfigurationService constructs a ConfigurationService.
func NewConfigurationService(repo configurationRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *ConfigurationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{
		repo:      repo,
		audit:     newAuditTrail(audit, logger, "configuration-service"),
		validator: validate,
		logger:    logger,
	}
}

// List returns every known setting. Unset keys are listed with an empty value.
func (s *ConfigurationService) List(ctx context.Context) ([]dto.ConfigurationItem, error) {
	rows, err := s.repo.ListByKeys(ctx, allowedConfigurationKeys)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list configurations")
	}
	existing := make(map[string]models.Configuration, len(rows))
	for _, row := range rows {
		existing[row.Key] = row
	}

	items := make([]dto.ConfigurationItem, 0, len(allowedConfigurationKeys))
	for _, key := range allowedConfigurationKeys {
		meta := allowedConfigurations[key]
		item := dto.ConfigurationItem{Key: key, Type: string(meta.Type), Description: meta.Description}
		if row, ok := existing[key]; ok {
			item.Value = row.Value
			if row.Description != nil && *row.Description != "" {
				item.Description = *row.Description
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Get retrieves a single setting.
func (s *ConfigurationService) Get(ctx context.Context, key string) (*dto.ConfigurationItem, error) {
	meta, err := requireAllowedKey(key)
	if err != nil {
		return nil, err
	}
	cfg, err := s.repo.Get(ctx, key)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound(fmt.Sprintf("setting %s is not configured", key))
		}
		return nil, appErrors.Internal(err, "failed to get configuration")
	}
	return toConfigurationItem(meta, cfg), nil
}

// Update validates and stores a single setting.
func (s *ConfigurationService) Update(ctx context.Context, key string, req dto.UpdateConfigurationRequest, actor *models.JWTClaims) (*dto.ConfigurationItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid configuration payload")
	}
	meta, err := requireAllowedKey(key)
	if err != nil {
		return nil, err
	}
	value, err := validateValue(meta, req.Value)
	if err != nil {
		return nil, err
	}

	prev, err := s.repo.Get(ctx, key)
	if err != nil && !isNoRows(err) {
		return nil, appErrors.Internal(err, "failed to fetch configuration")
	}
	if prev != nil && prev.Type != meta.Type {
		return nil, invalidInput("configuration type mismatch")
	}
	if err := s.checkCreditBounds(ctx, map[string]string{key: value}); err != nil {
		return nil, err
	}

	cfg := &models.Configuration{
		Key:         key,
		Value:       value,
		Type:        meta.Type,
		Description: strPtr(meta.Description),
		UpdatedBy:   userIDPtr(actor),
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Internal(err, "failed to update configuration")
	}

	s.audit.record(ctx, actor, models.AuditActionConfigUpdate, "configuration", key, auditValue(prev), map[string]string{"value": value})
	s.logger.Info("setting updated", zap.String("key", key), zap.String("value", value))
	return toConfigurationItem(meta, cfg), nil
}

// BulkUpdate applies multiple updates transactionally.
func (s *ConfigurationService) BulkUpdate(ctx context.Context, req dto.BulkUpdateConfigurationRequest, actor *models.JWTClaims) ([]dto.ConfigurationItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid bulk payload")
	}

	keys := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		keys = append(keys, item.Key)
	}
	existing, err := s.repo.ListByKeys(ctx, keys)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load existing configurations")
	}
	existingMap := make(map[string]models.Configuration, len(existing))
	for _, cfg := range existing {
		existingMap[cfg.Key] = cfg
	}

	pending := make(map[string]string, len(req.Items))
	toUpsert := make([]models.Configuration, 0, len(req.Items))
	for _, item := range req.Items {
		meta, err := requireAllowedKey(item.Key)
		if err != nil {
			return nil, err
		}
		value, err := validateValue(meta, item.Value)
		if err != nil {
			return nil, err
		}
		if prev, ok := existingMap[item.Key]; ok && prev.Type != meta.Type {
			return nil, invalidInput(fmt.Sprintf("configuration type mismatch for %s", item.Key))
		}
		pending[item.Key] = value
		toUpsert = append(toUpsert, models.Configuration{
			Key:         item.Key,
			Value:       value,
			Type:        meta.Type,
			Description: strPtr(meta.Description),
			UpdatedBy:   userIDPtr(actor),
		})
	}
	if err := s.checkCreditBounds(ctx, pending); err != nil {
		return nil, err
	}

	if err := s.repo.BulkUpsert(ctx, toUpsert); err != nil {
		return nil, appErrors.Internal(err, "failed to bulk update configurations")
	}

	result := make([]dto.ConfigurationItem, 0, len(toUpsert))
	for i := range toUpsert {
		cfg := toUpsert[i]
		result = append(result, *toConfigurationItem(allowedConfigurations[cfg.Key], &cfg))
		var prev *models.Configuration
		if row, ok := existingMap[cfg.Key]; ok {
			prev = &row
		}
		s.audit.record(ctx, actor, models.AuditActionConfigUpdate, "configuration", cfg.Key, auditValue(prev), map[string]string{"value": cfg.Value})
	}
	return result, nil
}

// EnrollmentPolicy reads the pricing and credit bounds. Every key must be present.
func (s *ConfigurationService) EnrollmentPolicy(ctx context.Context) (models.EnrollmentPolicy, error) {
	rows, err := s.repo.ListByKeys(ctx, policyKeys)
	if err != nil {
		return models.EnrollmentPolicy{}, appErrors.Internal(err, "failed to load enrollment settings")
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	for _, key := range policyKeys {
		if _, ok := values[key]; !ok {
			return models.EnrollmentPolicy{}, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("setting %s is not configured", key))
		}
	}

	var policy models.EnrollmentPolicy
	if policy.CreditCost, err = decimal.NewFromString(values[models.SettingCreditCost]); err != nil {
		return policy, appErrors.Internal(err, "setting credit_cost is not a number")
	}
	if policy.LateSurchargeRate, err = decimal.NewFromString(values[models.SettingLateSurchargeRate]); err != nil {
		return policy, appErrors.Internal(err, "setting late_surcharge_rate is not a number")
	}
	if policy.MaxCredits, err = strconv.Atoi(values[models.SettingMaxCreditsPerCycle]); err != nil {
		return policy, appErrors.Internal(err, "setting max_credits_per_cycle is not an integer")
	}
	if policy.MinCredits, err = strconv.Atoi(values[models.SettingMinCreditsPerCycle]); err != nil {
		return policy, appErrors.Internal(err, "setting min_credits_per_cycle is not an integer")
	}
	return policy, nil
}

// InstitutionName returns the display name printed on documents, empty if unset.
func (s *ConfigurationService) InstitutionName(ctx context.Context) string {
	cfg, err := s.repo.Get(ctx, models.SettingInstitutionName)
	if err != nil {
		if !isNoRows(err) {
			s.logger.Warn("failed to read institution name", zap.Error(err))
		}
		return ""
	}
	return cfg.Value
}

// checkCreditBounds keeps min_credits_per_cycle <= max_credits_per_cycle after applying pending.
func (s *ConfigurationService) checkCreditBounds(ctx context.Context, pending map[string]string) error {
	_, minChanged := pending[models.SettingMinCreditsPerCycle]
	_, maxChanged := pending[models.SettingMaxCreditsPerCycle]
	if !minChanged && !maxChanged {
		return nil
	}
	rows, err := s.repo.ListByKeys(ctx, []string{models.SettingMaxCreditsPerCycle, models.SettingMinCreditsPerCycle})
	if err != nil {
		return appErrors.Internal(err, "failed to load credit bounds")
	}
	values := make(map[string]string, 2)
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	for key, value := range pending {
		values[key] = value
	}
	minRaw, okMin := values[models.SettingMinCreditsPerCycle]
	maxRaw, okMax := values[models.SettingMaxCreditsPerCycle]
	if !okMin || !okMax {
		return nil
	}
	minCredits, _ := strconv.Atoi(minRaw)
	maxCredits, _ := strconv.Atoi(maxRaw)
	if minCredits > maxCredits {
		return invalidInput(fmt.Sprintf("min_credits_per_cycle (%d) cannot exceed max_credits_per_cycle (%d)", minCredits, maxCredits))
	}
	return nil
}

func requireAllowedKey(key string) (allowedConfiguration, error) {
	meta, ok := allowedConfigurations[key]
	if !ok {
		return allowedConfiguration{}, invalidInput("unsupported configuration key")
	}
	return meta, nil
}

func validateValue(meta allowedConfiguration, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch meta.Type {
	case models.ConfigurationTypeNumber:
		number, err := decimal.NewFromString(value)
		if err != nil || !number.IsPositive() {
			return "", invalidInput(fmt.Sprintf("%s expects a positive number", meta.Key))
		}
		return number.String(), nil
	case models.ConfigurationTypeInteger:
		number, err := strconv.Atoi(value)
		if err != nil || number <= 0 {
			return "", invalidInput(fmt.Sprintf("%s expects a positive integer", meta.Key))
		}
		return strconv.Itoa(number), nil
	case models.ConfigurationTypeBoolean:
		switch strings.ToLower(value) {
		case "true":
			return "true", nil
		case "false":
			return "false", nil
		}
		return "", invalidInput(fmt.Sprintf("%s expects boolean value", meta.Key))
	case models.ConfigurationTypeJSON:
		if !json.Valid([]byte(value)) {
			return "", invalidInput(fmt.Sprintf("%s expects a JSON document", meta.Key))
		}
		return value, nil
	case models.ConfigurationTypeString:
		if value == "" {
			return "", invalidInput(fmt.Sprintf("%s cannot be empty", meta.Key))
		}
		return value, nil
	}
	return "", invalidInput("unsupported configuration type")
}

func toConfigurationItem(meta allowedConfiguration, cfg *models.Configuration) *dto.ConfigurationItem {
	description := meta.Description
	if cfg.Description != nil && *cfg.Description != "" {
		description = *cfg.Description
	}
	return &dto.ConfigurationItem{Key: cfg.Key, Value: cfg.Value, Type: string(cfg.Type), Description: description}
}

func auditValue(cfg *models.Configuration) interface{} {
	if cfg == nil {
		return nil
	}
	return map[string]string{"value": cfg.Value}
}
