package commands

// CreatePersonCommand carries the profile for a new person. Email is
// unique-ish by convention but not enforced by the store.
type CreatePersonCommand struct {
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	PhoneNumber string  `json:"phoneNumber" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Avatar      *string `json:"avatar"`
	Gender      *string `json:"gender"`
	JobTitle    *string `json:"jobTitle"`
	Company     *string `json:"company"`
	City        *string `json:"city"`
	State       *string `json:"state"`
}
