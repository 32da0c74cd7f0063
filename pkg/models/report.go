package models

// CrimeType enumerates the report categories offered by the intake form.
type CrimeType string

const (
	CrimeTheft     CrimeType = "theft"
	CrimeAssault   CrimeType = "assault"
	CrimeVandalism CrimeType = "vandalism"
	CrimeFraud     CrimeType = "fraud"
	CrimeOther     CrimeType = "other"
)

// ReportStatus tracks a report through the back-office pipeline. New
// reports always start as pending; later transitions happen through the
// admin surface, never at submission time.
type ReportStatus string

const (
	StatusPending       ReportStatus = "pending"
	StatusInvestigating ReportStatus = "investigating"
	StatusResolved      ReportStatus = "resolved"
)

type CrimeReport struct {
	ID          string       `json:"id"`
	CrimeType   CrimeType    `json:"crimeType"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	Location    string       `json:"location"`
	Description string       `json:"description"`
	WitnessInfo string       `json:"witnessInfo,omitempty"`
	ContactInfo string       `json:"contactInfo"`
	Status      ReportStatus `json:"status"`
	// Submitter attribution; reports are never anonymous.
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	Timestamp string `json:"timestamp"`
}

// ReportRef is the compact entry appended to a user's profile index when
// a report is filed.
type ReportRef struct {
	ID        string       `json:"id"`
	Type      CrimeType    `json:"type"`
	Timestamp string       `json:"timestamp"`
	Status    ReportStatus `json:"status"`
}
