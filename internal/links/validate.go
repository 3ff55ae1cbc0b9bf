package links

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const exclusiveMessage = "Please select an internal page or an external link (but not both)"

// Validate checks the page/url exclusivity of a required link. The returned
// error is a validation.Errors naming both fields, or nil.
func Validate(spec Spec) error {
	if !spec.Required {
		return nil
	}
	if spec.HasPage() != spec.HasURL() {
		return nil
	}
	return validation.Errors{
		FieldInternalPage: validation.NewError("validation_link_exclusive", exclusiveMessage),
		FieldURL:          validation.NewError("validation_link_exclusive", exclusiveMessage),
	}
}
