package models

// UserProfile is the satellite document keyed by the account id. The
// authoritative credential record lives next to it in the accounts
// namespace; this document carries the display fields and the append-only
// report index.
type UserProfile struct {
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	CreatedAt string      `json:"createdAt"`
	Reports   []ReportRef `json:"reports"`
}

// Station describes one police station in the static directory.
type Station struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone"`
	Hours    string   `json:"hours"`
	Services []string `json:"services"`
}
