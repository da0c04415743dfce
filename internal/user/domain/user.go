package domain

type ID string

// Record is one entry of the user directory. Passwords are only ever held as hashes.
type Record struct {
	ID           ID
	Name         string
	Email        string
	PasswordHash string
}

// DemoAccount is a pre-fill hint offered on the sign-in page.
type DemoAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
