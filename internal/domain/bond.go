package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Column limits mirrored by the database schema.
const (
	maxIssueNameLen     = 255
	maxChannelLen       = 50
	maxIssuerCodeLen    = 20
	maxIssuerNameLen    = 255
	maxIssuerLEILen     = 255
	maxFrequencyLen     = 50
	totalValueDigits    = 10
	interestRateDigits  = 5
	decimalPlaces       = 2
	requiredFieldReason = "This field is required."
)

// Bond is a fixed-income holding owned by exactly one user.
type Bond struct {
	ID                string    `json:"id"`
	CVal              string    `json:"cval"`
	IssueName         string    `json:"ison"`
	TotalValue        Decimal   `json:"tval"`
	Channel           string    `json:"pdcp"`
	RegistrationDate  Date      `json:"regdt"`
	IssuerCode        string    `json:"eico"`
	IssuerName        string    `json:"ename"`
	IssuerLEI         string    `json:"elei"`
	PurchaseDate      Date      `json:"purchase_date"`
	MaturityDate      Date      `json:"maturity_date"`
	InterestRate      Decimal   `json:"interest_rate"`
	InterestFrequency string    `json:"interest_frequency"`
	OwnerID           string    `json:"owner"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewBond builds a bond for ownerID from a reconciled field set and validates it.
func NewBond(ownerID string, fields FieldSet, now time.Time) (*Bond, error) {
	b := &Bond{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if fields[FieldInterestRate] == "" {
		return nil, NewValidationError(KindInvalidValue, FieldInterestRate+": "+requiredFieldReason)
	}
	if err := b.Apply(fields); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Apply coerces every known field in fields onto b. Unknown keys are ignored.
// All coercion problems are reported together, in field declaration order.
func (b *Bond) Apply(fields FieldSet) error {
	var problems []string
	for _, name := range BondFields {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := b.setField(name, value); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(problems) > 0 {
		return NewValidationError(KindInvalidValue, strings.Join(problems, "; "))
	}
	return nil
}

func (b *Bond) setField(name, value string) error {
	switch name {
	case FieldCVal:
		b.CVal = value
	case FieldIssueName:
		b.IssueName = value
	case FieldChannel:
		b.Channel = value
	case FieldIssuerCode:
		b.IssuerCode = value
	case FieldIssuerName:
		b.IssuerName = value
	case FieldIssuerLEI:
		b.IssuerLEI = value
	case FieldInterestFrequency:
		b.InterestFrequency = value
	case FieldTotalValue, FieldInterestRate:
		d, err := NewDecimalFromString(value)
		if err != nil {
			return errors.New("A valid number is required.")
		}
		if name == FieldTotalValue {
			b.TotalValue = d
		} else {
			b.InterestRate = d
		}
	case FieldRegistrationDate, FieldPurchaseDate, FieldMaturityDate:
		d, err := ParseDate(value)
		if err != nil {
			return errors.New("Date has wrong format. Use YYYY-MM-DD.")
		}
		switch name {
		case FieldRegistrationDate:
			b.RegistrationDate = d
		case FieldPurchaseDate:
			b.PurchaseDate = d
		default:
			b.MaturityDate = d
		}
	}
	return nil
}

// Validate enforces the field rules a stored bond must satisfy.
func (b *Bond) Validate() error {
	var problems []string
	add := func(field, reason string) {
		problems = append(problems, fmt.Sprintf("%s: %s", field, reason))
	}

	if b.CVal == "" {
		add(FieldCVal, requiredFieldReason)
	} else if err := ValidateCVal(b.CVal); err != nil {
		return err
	}

	checkString := func(field, value string, maxLen int) {
		switch {
		case value == "":
			add(field, requiredFieldReason)
		case len(value) > maxLen:
			add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", maxLen))
		}
	}
	checkString(FieldIssueName, b.IssueName, maxIssueNameLen)

	if err := b.TotalValue.CheckPrecision(totalValueDigits, decimalPlaces); err != nil {
		add(FieldTotalValue, err.Error())
	}
	if b.TotalValue.Cmp(Zero) <= 0 {
		add(FieldTotalValue, "The value must be positive.")
	}

	checkString(FieldChannel, b.Channel, maxChannelLen)
	if b.RegistrationDate.IsZero() {
		add(FieldRegistrationDate, requiredFieldReason)
	}
	checkString(FieldIssuerCode, b.IssuerCode, maxIssuerCodeLen)
	checkString(FieldIssuerName, b.IssuerName, maxIssuerNameLen)
	checkString(FieldIssuerLEI, b.IssuerLEI, maxIssuerLEILen)
	if b.PurchaseDate.IsZero() {
		add(FieldPurchaseDate, requiredFieldReason)
	}
	if b.MaturityDate.IsZero() {
		add(FieldMaturityDate, requiredFieldReason)
	}

	if err := b.InterestRate.CheckPrecision(interestRateDigits, decimalPlaces); err != nil {
		add(FieldInterestRate, err.Error())
	}
	if b.InterestRate.IsNegative() {
		add(FieldInterestRate, "The value must be positive.")
	}
	checkString(FieldInterestFrequency, b.InterestFrequency, maxFrequencyLen)

	if b.OwnerID == "" {
		add("owner", requiredFieldReason)
	}

	if len(problems) > 0 {
		return NewValidationError(KindInvalidValue, strings.Join(problems, "; "))
	}
	return nil
}

// Fields renders the stored values as a FieldSet; empty values are left out.
func (b *Bond) Fields() FieldSet {
	all := map[string]string{
		FieldCVal:              b.CVal,
		FieldIssueName:         b.IssueName,
		FieldChannel:           b.Channel,
		FieldRegistrationDate:  b.RegistrationDate.String(),
		FieldIssuerCode:        b.IssuerCode,
		FieldIssuerName:        b.IssuerName,
		FieldIssuerLEI:         b.IssuerLEI,
		FieldPurchaseDate:      b.PurchaseDate.String(),
		FieldMaturityDate:      b.MaturityDate.String(),
		FieldInterestFrequency: b.InterestFrequency,
	}
	fields := make(FieldSet, len(BondFields))
	for k, v := range all {
		if v != "" {
			fields[k] = v
		}
	}
	fields[FieldTotalValue] = b.TotalValue.String()
	fields[FieldInterestRate] = b.InterestRate.String()
	return fields
}
