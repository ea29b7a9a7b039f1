package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfigurationType defines supported types for configuration values.
type ConfigurationType string

const (
	ConfigurationTypeString  ConfigurationType = "STRING"
	ConfigurationTypeNumber  ConfigurationType = "NUMBER"
	ConfigurationTypeInteger ConfigurationType = "INTEGER"
	ConfigurationTypeBoolean ConfigurationType = "BOOLEAN"
	ConfigurationTypeJSON    ConfigurationType = "JSON"
)

// Setting keys read by the enrollment engine and documents.
const (
	SettingCreditCost         = "credit_cost"
	SettingMaxCreditsPerCycle = "max_credits_per_cycle"
	SettingMinCreditsPerCycle = "min_credits_per_cycle"
	SettingLateSurchargeRate  = "late_surcharge_rate"
	SettingInstitutionName    = "institution_name"
)

// Configuration represents a persisted configuration entry.
type Configuration struct {
	Key         string            `db:"key" json:"key"`
	Value       string            `db:"value" json:"value"`
	Type        ConfigurationType `db:"type" json:"type"`
	Description *string           `db:"description" json:"description,omitempty"`
	UpdatedBy   *string           `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// EnrollmentPolicy is the typed view of the settings that price and bound enrollments.
type EnrollmentPolicy struct {
	CreditCost        decimal.Decimal
	MaxCredits        int
	MinCredits        int
	LateSurchargeRate decimal.Decimal
}

// Multiplier returns the price multiplier for an enrollment type.
func (p EnrollmentPolicy) Multiplier(t EnrollmentType) decimal.Decimal {
	if t == EnrollmentTypeLate {
		return p.LateSurchargeRate
	}
	return decimal.NewFromInt(1)
}
