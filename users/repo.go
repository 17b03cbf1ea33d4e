package users

// UserRepo stores portal accounts. Only the backend emulation keeps accounts;
// the client itself holds a single current user in its session.
type UserRepo interface {
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID int64) (*User, error)
	List(role RoleType, offset, limit int) ([]*User, int, error)
	SetActive(email string, active bool) error
	SetVerified(email string, verified bool) error
}
