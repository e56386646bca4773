package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Bond field names, shared by the API payloads, the registry and the reconciler.
const (
	FieldCVal              = "cval"
	FieldIssueName         = "ison"
	FieldTotalValue        = "tval"
	FieldChannel           = "pdcp"
	FieldRegistrationDate  = "regdt"
	FieldIssuerCode        = "eico"
	FieldIssuerName        = "ename"
	FieldIssuerLEI         = "elei"
	FieldPurchaseDate      = "purchase_date"
	FieldMaturityDate      = "maturity_date"
	FieldInterestRate      = "interest_rate"
	FieldInterestFrequency = "interest_frequency"
)

// RegistryFields lists, in declaration order, the fields every registry record must carry.
var RegistryFields = []string{
	FieldCVal,
	FieldIssueName,
	FieldTotalValue,
	FieldChannel,
	FieldRegistrationDate,
	FieldIssuerCode,
	FieldIssuerName,
	FieldIssuerLEI,
}

// BondFields lists every user-writable bond field.
var BondFields = append(append([]string{}, RegistryFields...),
	FieldPurchaseDate,
	FieldMaturityDate,
	FieldInterestRate,
	FieldInterestFrequency,
)

var decimalFields = map[string]bool{
	FieldTotalValue:   true,
	FieldInterestRate: true,
}

var dateFields = map[string]bool{
	FieldRegistrationDate: true,
	FieldPurchaseDate:     true,
	FieldMaturityDate:     true,
}

// ReferenceRecord is one registry entry as decoded from the registry JSON.
type ReferenceRecord map[string]any

// FieldSet maps bond field names to canonical string values.
type FieldSet map[string]string

// Clone returns an independent copy; a nil set clones to an empty one.
func (f FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the field names in sorted order.
func (f FieldSet) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SubmittedFields converts a decoded JSON payload into a FieldSet, keeping
// only writable bond fields. Null values are treated as not submitted.
// Every bond field is a scalar; lists and objects are rejected.
func SubmittedFields(payload map[string]any) (FieldSet, error) {
	fields := make(FieldSet)
	var problems []string
	for _, name := range BondFields {
		value := payload[name]
		if !isScalar(value) {
			problems = append(problems, name+": "+notScalarReason)
			continue
		}
		if s, ok := CanonicalValue(value); ok {
			fields[name] = s
		}
	}
	if len(problems) > 0 {
		return nil, NewValidationError(KindInvalidValue, strings.Join(problems, "; "))
	}
	return fields, nil
}

const notScalarReason = "Expected a single value, not a list or an object."

func isScalar(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return false
	default:
		return true
	}
}

// CanonicalValue renders a decoded JSON scalar as a field string.
// The boolean is false for nil and for lists or objects, which callers treat
// as absent.
func CanonicalValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil, []any, map[string]any:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return fmt.Sprint(val), true
	}
}

// IsEmptyValue reports whether a decoded JSON value counts as missing:
// nil, empty string, false, numeric zero or an empty collection.
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case float64:
		return val == 0
	case float32:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

// SameFieldValue compares two field strings the way the field is stored:
// decimals numerically, dates by calendar day, everything else verbatim.
func SameFieldValue(field, a, b string) bool {
	if a == b {
		return true
	}
	switch {
	case decimalFields[field]:
		da, errA := NewDecimalFromString(a)
		db, errB := NewDecimalFromString(b)
		return errA == nil && errB == nil && da.Equal(db)
	case dateFields[field]:
		da, errA := ParseDate(a)
		db, errB := ParseDate(b)
		return errA == nil && errB == nil && da.Equal(db)
	default:
		return false
	}
}
