// Package validation holds the struct validation rules shared by the HTTP
// binding layer and the services that accept data from imports.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagName is the struct tag the rules are read from. It matches gin's binding tag
// so the same annotations drive request binding and service-side checks.
const TagName = "binding"

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

var containerPattern = regexp.MustCompile(`^[A-Z]{3}[UJZ][0-9]{7}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.SetTagName(TagName)
		if err := Register(v); err != nil {
			panic(err)
		}
		instance = v
	})
	return instance
}

// Register adds the custom rules to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("container_no", func(fl validator.FieldLevel) bool {
		return IsContainerNumber(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register container_no: %w", err)
	}
	if err := v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return gstinPattern.MatchString(strings.ToUpper(fl.Field().String()))
	}); err != nil {
		return fmt.Errorf("register gstin: %w", err)
	}
	return nil
}

// Struct validates s against its binding tags.
func Struct(s interface{}) error {
	return Validator().Struct(s)
}

// IsContainerNumber checks an ISO 6346 container number including its check digit.
func IsContainerNumber(value string) bool {
	number := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	if !containerPattern.MatchString(number) {
		return false
	}

	sum := 0
	weight := 1
	for i := 0; i < 10; i++ {
		sum += containerCharValue(number[i]) * weight
		weight *= 2
	}
	check := sum % 11 % 10
	return int(number[10]-'0') == check
}

// containerCharValue maps letters to ISO 6346 values, skipping multiples of 11.
func containerCharValue(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	v := 10
	for l := byte('A'); l < c; l++ {
		v++
		if v%11 == 0 {
			v++
		}
	}
	return v
}

// Describe flattens validator errors into a single readable message.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
