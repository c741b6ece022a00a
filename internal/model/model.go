package model

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	PaymentCash = "cash"
	PaymentUPI  = "upi"
)

// Event is a catalog entry. The catalog is reference data: loaded once at
// startup and never mutated by the registration or admin flows.
type Event struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Fee         int      `yaml:"fee" json:"fee"`
	Time        string   `yaml:"time" json:"time"`
	Description string   `yaml:"description" json:"description"`
	Rules       []string `yaml:"rules" json:"rules"`
	Coordinator string   `yaml:"coordinator" json:"coordinator"`
}

type ScheduleItem struct {
	Time        string `yaml:"time" json:"time"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type ScheduleDay struct {
	Title  string         `yaml:"title" json:"title"`
	Events []ScheduleItem `yaml:"events" json:"events"`
}

// Registration is one participant's submission. TotalFee is derived from
// Events via the catalog and is never taken from the client. Timestamp is an
// RFC 3339 string assigned at submission; it is the sole sort key and is
// never updated afterwards. An empty Timestamp sorts last.
type Registration struct {
	ID                   int64    `db:"id" json:"id"`
	FullName             string   `db:"full_name" json:"full_name"`
	Email                string   `db:"email" json:"email"`
	Phone                string   `db:"phone" json:"phone"`
	College              string   `db:"college" json:"college"`
	Year                 string   `db:"year" json:"year"`
	Branch               string   `db:"branch" json:"branch"`
	Events               []string `db:"events" json:"events"`
	TeamMembers          string   `db:"team_members" json:"team_members,omitempty"`
	TotalFee             int      `db:"total_fee" json:"total_fee"`
	PaymentMethod        string   `db:"payment_method" json:"payment_method"`
	PaymentScreenshotURL string   `db:"payment_screenshot_url" json:"payment_screenshot_url,omitempty"`
	Timestamp            string   `db:"created_at" json:"timestamp,omitempty"`
	Status               string   `db:"status" json:"status"`
}
