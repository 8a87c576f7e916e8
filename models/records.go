package models

// Record is implemented by every entity kept in a keyed local store.
type Record interface {
	RecordID() ID
}

// Collection names shared by the local stores, the pending-operation queue,
// backup documents and the remote system of record.
const (
	CollectionMembers      = "members"
	CollectionServices     = "services"
	CollectionTransactions = "transactions"
	CollectionUsers        = "users"
	CollectionAttendance   = "attendance"
	CollectionSettings     = "settings"
)

// Member is a person belonging to the congregation.
type Member struct {
	ID        ID     `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Email is the secondary identifier used by attendance reference
	// resolution. Compared case-insensitively.
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	// Status is a free-form membership status (e.g. "active", "visitor").
	Status string `json:"status,omitempty"`

	// JoinedAt is a calendar date in YYYY-MM-DD form.
	JoinedAt string `json:"joined_at,omitempty"`
}

// RecordID implements [Record].
func (m Member) RecordID() ID { return m.ID }

// DisplayName returns "FirstName LastName" without surrounding whitespace.
func (m Member) DisplayName() string {
	switch {
	case m.FirstName == "":
		return m.LastName
	case m.LastName == "":
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// Service is a recurring church service attendance is recorded for.
type Service struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	DayOfWeek string `json:"day_of_week,omitempty"`
	StartTime string `json:"start_time,omitempty"`
}

// RecordID implements [Record].
func (s Service) RecordID() ID { return s.ID }

// Transaction is a single financial entry such as a tithe or an offering.
type Transaction struct {
	ID       ID      `json:"id"`
	MemberID ID      `json:"member_id,omitempty"`
	Kind     string  `json:"kind"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Date     string  `json:"date"`
	Note     string  `json:"note,omitempty"`
}

// RecordID implements [Record].
func (t Transaction) RecordID() ID { return t.ID }

// User is a local operator account of the client application.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`

	// PasswordHash is a bcrypt hash. It is emptied in every backup export.
	PasswordHash string `json:"password_hash,omitempty" secret:"true"`
}

// RecordID implements [Record].
func (u User) RecordID() ID { return u.ID }

// Settings is the single configuration object of a client installation.
type Settings struct {
	ChurchName string `json:"church_name"`
	Currency   string `json:"currency,omitempty"`
	Timezone   string `json:"timezone,omitempty"`

	// SMSAPIKey and AIAPIKey are credentials of external providers and are
	// never written into backup documents.
	SMSAPIKey string `json:"sms_api_key,omitempty" secret:"true"`
	AIAPIKey  string `json:"ai_api_key,omitempty" secret:"true"`
}
