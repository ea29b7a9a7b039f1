package dto

// ConfigurationItem represents a setting exposed via API.
type ConfigurationItem struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// UpdateConfigurationRequest is the body of PUT /settings/:key.
type UpdateConfigurationRequest struct {
	Value string `json:"value" validate:"required"`
}

// BulkConfigurationItem is one entry of a bulk update.
type BulkConfigurationItem struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// BulkUpdateConfigurationRequest holds multiple update requests.
type BulkUpdateConfigurationRequest struct {
	Items []BulkConfigurationItem `json:"items" validate:"required,min=1,dive"`
}
