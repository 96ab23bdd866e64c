package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"atelier-backend/domain"
	"atelier-backend/pkg/utils"
)

// DefaultPhoneRegion resolves national numbers without a country prefix.
const DefaultPhoneRegion = "US"

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

type Registration struct {
	Tag  string
	Func validator.Func
}

var defaultRegistrations = [...]Registration{
	{
		Tag:  PhoneNumber,
		Func: IsValidPhoneNumber,
	},
	{
		Tag:  Permission,
		Func: IsValidPermission,
	},
	{
		Tag:  OrderStatus,
		Func: IsValidOrderStatus,
	},
	{
		Tag:  InquiryStatus,
		Func: IsValidInquiryStatus,
	},
	{
		Tag:  Currency,
		Func: IsValidCurrency,
	},
	{
		Tag:  NotEmpty,
		Func: IsNotEmpty,
	},
}

func IsValidPhoneNumber(fl validator.FieldLevel) bool {
	input := fl.Field().String()
	if input == "" {
		// If it's optional and empty, consider it valid
		return true
	}
	return utils.IsValidPhone(input, DefaultPhoneRegion)
}

func IsValidPermission(fl validator.FieldLevel) bool {
	input := fl.Field().String()
	_, err := domain.ParsePermission(input)
	return err == nil
}

func IsValidOrderStatus(fl validator.FieldLevel) bool {
	input := domain.OrderStatus(fl.Field().String())
	return input.IsValid()
}

func IsValidInquiryStatus(fl validator.FieldLevel) bool {
	input := domain.InquiryStatus(fl.Field().Int())
	return input.IsValid()
}

func IsValidCurrency(fl validator.FieldLevel) bool {
	input := fl.Field().String()
	if input == "" {
		return true
	}
	return currencyRegex.MatchString(input)
}

func IsNotEmpty(fl validator.FieldLevel) bool {
	input := fl.Field().String()
	return len(input) > 0
}
