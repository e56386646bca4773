package domain

import "regexp"

// CValLength is the fixed length of a bond identifier (ISIN-like code).
const CValLength = 12

var cvalPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{10}$`)

const invalidCValMessage = "Invalid ISIN format. ISIN must be 12 characters long, start with 2 letters, and followed by 10 digits."

// ValidateCVal checks the lexical shape of a bond identifier: two uppercase
// ASCII letters followed by ten decimal digits.
func ValidateCVal(value string) error {
	if len(value) != CValLength || !cvalPattern.MatchString(value) {
		return NewValidationError(KindInvalidFormat, invalidCValMessage)
	}
	return nil
}
