package domain

// Hotel is one catalog property. ImageURLs holds public paths under the
// uploads namespace in display order; duplicates are allowed.
type Hotel struct {
	ID          int64
	Name        string
	City        string
	Address     string
	Description *string
	ImageURLs   []string
}

// HotelInput carries the caller-supplied scalar fields for create and update.
type HotelInput struct {
	Name        string
	City        string
	Address     string
	Description *string
}
