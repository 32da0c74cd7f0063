package models

// Account is the credential record for a registered user. The password is
// stored only as a bcrypt hash. Accounts never leave the server; responses
// carry Identity instead.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

// Identity is the client-visible view of an account.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Identity derives the client-visible view of the account.
func (a Account) Identity() Identity {
	return Identity{ID: a.ID, Email: a.Email, Name: a.Name}
}
