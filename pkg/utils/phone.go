package utils

import (
	"github.com/nyaruka/phonenumbers"
)

// FormatE164 normalizes a phone number into E.164 form. The region is used
// when the input has no country prefix.
func FormatE164(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", err
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsValidPhone reports whether raw parses as a valid number for the region.
func IsValidPhone(raw, region string) bool {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}
