package domain

// PIIField names a hashable user_data field. Values are the provider's
// user_data keys.
type PIIField string

const (
	FieldEmail       PIIField = "em"
	FieldPhone       PIIField = "ph"
	FieldFirstName   PIIField = "fn"
	FieldLastName    PIIField = "ln"
	FieldGender      PIIField = "ge"
	FieldDateOfBirth PIIField = "db"
	FieldCity        PIIField = "ct"
	FieldState       PIIField = "st"
	FieldZip         PIIField = "zp"
	FieldCountry     PIIField = "country"
	FieldExternalID  PIIField = "external_id"
)

var piiInputNames = map[PIIField]string{
	FieldEmail:       "email",
	FieldPhone:       "phone",
	FieldFirstName:   "first_name",
	FieldLastName:    "last_name",
	FieldGender:      "gender",
	FieldDateOfBirth: "date_of_birth",
	FieldCity:        "city",
	FieldState:       "state",
	FieldZip:         "zip",
	FieldCountry:     "country",
	FieldExternalID:  "external_id",
}

// InputName is the field's path in the inbound request, used in violations.
func (f PIIField) InputName() string {
	if n, ok := piiInputNames[f]; ok {
		return "user_data." + n
	}
	return "user_data." + string(f)
}

// NormalizedPII holds canonical values of present fields only.
type NormalizedPII map[PIIField]string

// HashedPII holds hex digests of present fields only.
type HashedPII map[PIIField]string
