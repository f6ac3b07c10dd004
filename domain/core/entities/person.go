package entities

// Person is a registered community member. Identity fields are required;
// profile attributes are optional and explicitly nullable so the codec can
// tell "unset" apart from "empty". The two counters only ever move forward,
// one step per gathering the person hosts or attends.
type Person struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber string  `json:"phoneNumber"`
	Email       string  `json:"email"`
	Avatar      *string `json:"avatar"`
	Gender      *string `json:"gender"`
	JobTitle    *string `json:"jobTitle"`
	Company     *string `json:"company"`
	City        *string `json:"city"`
	State       *string `json:"state"`

	HostedCount   int `json:"hostedCount"`
	AttendedCount int `json:"attendedCount"`
}

// HasLocation reports whether both city and state are set. Only then is the
// person discoverable through the location index.
func (p *Person) HasLocation() bool {
	return p.City != nil && p.State != nil
}
