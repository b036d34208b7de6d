package domain

import "strings"

const sageToken = "sage"

// IsSage is true iff the email/control field is "sage", any case.
func IsSage(email string) bool {
	return strings.EqualFold(email, sageToken)
}
