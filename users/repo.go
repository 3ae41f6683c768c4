package users

// UserRepo stores users keyed by ID with a unique email index.
// Lookups of absent users return errors.ErrNotFound.
type UserRepo interface {
	Upsert(user *User) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
}
