package queries

// CountRange is an inclusive numeric range over one of the person counters.
// Either bound may be absent.
type CountRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// Contains reports whether v falls inside the range.
func (r *CountRange) Contains(v int) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// PersonFilter is the closed set of recognized person filters. Filters are
// combined with AND. City and state only act as the location filter when
// both are present; one without the other is ignored by index selection and
// residual matching alike, mirroring the joint location projection key.
type PersonFilter struct {
	Company       *string     `json:"company"`
	JobTitle      *string     `json:"jobTitle"`
	City          *string     `json:"city"`
	State         *string     `json:"state"`
	HostedCount   *CountRange `json:"hostedCount"`
	AttendedCount *CountRange `json:"attendedCount"`
}

// HasLocation reports whether the joint city+state filter is active.
func (f PersonFilter) HasLocation() bool {
	return f.City != nil && f.State != nil
}

// IsEmpty reports whether no recognized filter is set.
func (f PersonFilter) IsEmpty() bool {
	return f.Company == nil && f.JobTitle == nil && !f.HasLocation() &&
		f.HostedCount == nil && f.AttendedCount == nil
}
