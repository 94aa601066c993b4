package store

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Record Schema
// --------------------------------------------------------------------------

// Field is the name of one column of a phonebook record.
type Field string

const (
	FieldSurname    Field = "surname"
	FieldName       Field = "name"
	FieldPatronymic Field = "patronymic"
	FieldPhone      Field = "phone"
	FieldNote       Field = "note"
)

// Schema is the ordered set of record fields. The order is the order used on
// disk and when rendering a record as text.
var Schema = [...]Field{FieldSurname, FieldName, FieldPatronymic, FieldPhone, FieldNote}

// ParseField converts a field name to a Field. ok is false if the name is not
// part of the schema.
func ParseField(name string) (field Field, ok bool) {
	for _, f := range Schema {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// FieldNames returns the schema field names in order.
func FieldNames() []string {
	names := make([]string, len(Schema))
	for i, f := range Schema {
		names[i] = string(f)
	}
	return names
}

// --------------------------------------------------------------------------
// Record
// --------------------------------------------------------------------------

// Record is a single phonebook entry. The struct field order defines the
// key order of the JSON object written to the store file.
type Record struct {
	Surname    string `json:"surname"`
	Name       string `json:"name"`
	Patronymic string `json:"patronymic"`
	Phone      string `json:"phone"`
	Note       string `json:"note"`
}

// NewRecordFromMap builds a record from a field name to value map.
// Every schema field must be present, unknown keys are rejected.
func NewRecordFromMap(values map[string]string) (Record, error) {
	var r Record
	for key := range values {
		if _, ok := ParseField(key); !ok {
			return r, NewError(RetCInvalidField, fmt.Sprintf("unknown field %q", key))
		}
	}
	for _, f := range Schema {
		v, ok := values[string(f)]
		if !ok {
			return r, NewError(RetCInvalidField, fmt.Sprintf("missing field %q", f))
		}
		r.set(f, v)
	}
	return r, nil
}

// Get returns the value of the given field. ok is false for unknown fields.
func (r Record) Get(field Field) (value string, ok bool) {
	switch field {
	case FieldSurname:
		return r.Surname, true
	case FieldName:
		return r.Name, true
	case FieldPatronymic:
		return r.Patronymic, true
	case FieldPhone:
		return r.Phone, true
	case FieldNote:
		return r.Note, true
	default:
		return "", false
	}
}

func (r *Record) set(field Field, value string) {
	switch field {
	case FieldSurname:
		r.Surname = value
	case FieldName:
		r.Name = value
	case FieldPatronymic:
		r.Patronymic = value
	case FieldPhone:
		r.Phone = value
	case FieldNote:
		r.Note = value
	}
}

// Values returns the field values in schema order.
func (r Record) Values() []string {
	return []string{r.Surname, r.Name, r.Patronymic, r.Phone, r.Note}
}

// ToMap returns the record as a field name to value map.
func (r Record) ToMap() map[string]string {
	m := make(map[string]string, len(Schema))
	for _, f := range Schema {
		m[string(f)], _ = r.Get(f)
	}
	return m
}

// Matches reports whether any field of the record is exactly equal to target.
func (r Record) Matches(target string) bool {
	for _, v := range r.Values() {
		if v == target {
			return true
		}
	}
	return false
}

// String renders the record as its field values separated by single spaces.
func (r Record) String() string {
	return strings.Join(r.Values(), " ")
}
