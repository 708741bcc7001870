package user

// Filter holds the optional listing constraints. Absent fields contribute
// no constraint; the storage layer combines the present ones with AND.
type Filter struct {
	Query    string // case-insensitive substring match on Name
	MinAge   *int64 // inclusive lower bound on Age
	MaxAge   *int64 // inclusive upper bound on Age
	IsActive *bool  // exact match on IsActive
}
