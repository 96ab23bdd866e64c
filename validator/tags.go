package validator

const (
	Email         = "email"
	URL           = "url"
	Min           = "min"
	Gt            = "gt"
	Max           = "max"
	Required      = "required"
	PhoneNumber   = "phone_number"
	Permission    = "permission"
	OrderStatus   = "order_status"
	InquiryStatus = "inquiry_status"
	Currency      = "currency"
	NotEmpty      = "not_empty"
)
