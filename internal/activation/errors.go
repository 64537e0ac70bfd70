package activation

import "strings"

// Field names used when reporting missing key fields.
const (
	FieldONTSerial = "SN ONT"
	FieldONTNik    = "NIK ONT"
)

// MissingFieldsError rejects a draft whose natural key is incomplete.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
