package model

// SourceType buckets sources by how authoritative they are.
type SourceType string

const (
	SourceTypeOfficialRegistry    SourceType = "official_registry"
	SourceTypeCompanyWebsite      SourceType = "company_website"
	SourceTypeProfessionalNetwork SourceType = "professional_network"
	SourceTypeThirdPartyDirectory SourceType = "third_party_directory"
	SourceTypeSocialMedia         SourceType = "social_media"
	SourceTypeGenericWeb          SourceType = "generic_web"
)

// ValidationStatus is the cross-validation verdict for a profile.
type ValidationStatus string

const (
	ValidationValidated          ValidationStatus = "validated"
	ValidationPartiallyValidated ValidationStatus = "partially_validated"
	ValidationConflicting        ValidationStatus = "conflicting"
	ValidationInsufficientData   ValidationStatus = "insufficient_data"
)

// SourceValue is one source's value for a profile field.
type SourceValue struct {
	SourceID   string     `json:"source_id"`
	SourceType SourceType `json:"source_type"`
	Value      string     `json:"value"`
	Weight     float64    `json:"weight"`
}

// FieldConflict records sources disagreeing on one field and which value won.
type FieldConflict struct {
	Field        string        `json:"field"`
	Values       []SourceValue `json:"values"`
	ChosenValue  string        `json:"chosen_value"`
	ChosenSource string        `json:"chosen_source"`
	Agreement    float64       `json:"agreement"`
}

// CrossValidation is attached to a profile after the cross-validation pass.
type CrossValidation struct {
	Status          ValidationStatus `json:"status"`
	SourcesChecked  int              `json:"sources_checked"`
	FieldsChecked   int              `json:"fields_checked"`
	ValidatedFields []string         `json:"validated_fields,omitempty"`
	Conflicts       []FieldConflict  `json:"conflicts,omitempty"`
}
