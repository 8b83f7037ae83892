package models

// JobListing is one row of the static government jobs CSV. The catalogue is
// read once at startup and immutable afterwards.
type JobListing struct {
	Title         string `csv:"title" json:"title"`
	Department    string `csv:"department" json:"department"`
	Qualification string `csv:"qualification" json:"qualification"`
	Location      string `csv:"location" json:"location"`
	LastDate      string `csv:"last_date" json:"lastDate"`
	ApplyLink     string `csv:"apply_link" json:"applyLink"`
	Category      string `csv:"category" json:"category"`
}
