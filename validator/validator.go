package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

type Validator interface {
	Engine() any
	ValidateStruct(obj any) error
	GetTranslator(locale string) (ut.Translator, error)
}

var (
	defaultValidator Validator
	vOnce            sync.Once
)

func DefaultValidator() Validator {
	vOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// RegisterValidatorWithGin swaps gin's binding validator for ours so request
// structs get the custom tags and translated messages.
func RegisterValidatorWithGin() {
	binding.Validator = DefaultValidator().(*validatorImpl)
}

var (
	_ Validator               = (*validatorImpl)(nil)
	_ binding.StructValidator = (*validatorImpl)(nil)
)

func New() Validator {
	v := &validatorImpl{
		validate: validator.New(),
		locale:   "en",
	}
	v.validate.SetTagName("validate")
	v.initTranslator()

	// Report field names from json tags so validation errors match the
	// request payload the client actually sent.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, registration := range defaultRegistrations {
		if err := v.validate.RegisterValidation(registration.Tag, registration.Func); err != nil {
			panic(fmt.Sprintf("register validation %s: %v", registration.Tag, err))
		}
	}

	v.registerCustomTranslations()
	return v
}

type validatorImpl struct {
	validate   *validator.Validate
	uni        *ut.UniversalTranslator
	translator ut.Translator
	locale     string
}

func (v *validatorImpl) ValidateStruct(obj any) error {
	if kindOf(obj) != reflect.Struct {
		return nil
	}
	return v.validate.Struct(obj)
}

func (v *validatorImpl) Engine() any {
	return v.validate
}

func (v *validatorImpl) GetTranslator(locale string) (ut.Translator, error) {
	trans, found := v.uni.GetTranslator(locale)
	if !found {
		return nil, fmt.Errorf("translator for locale %q not found", locale)
	}
	return trans, nil
}

func kindOf(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	kind := value.Kind()
	if kind == reflect.Ptr {
		kind = value.Elem().Kind()
	}
	return kind
}
