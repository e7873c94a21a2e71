package model

import "golang.org/x/crypto/bcrypt"

// User is an account that records transactions.
type User struct {
	UserID       int    `gorm:"column:user_id;primaryKey" json:"user_id"`
	UserName     string `gorm:"column:user_name;type:text;uniqueIndex;not null" json:"user_name" validate:"required"`
	UserPassword []byte `gorm:"column:user_password;type:bytea;not null" json:"-"`

	Transactions []Transaction `gorm:"foreignKey:UserID;references:UserID" json:"transactions,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the user's password.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.UserPassword = hashed
	return nil
}

// CheckPassword verifies the given password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.UserPassword, []byte(password)) == nil
}

// UserResponse is the API shape of a user, without the password hash.
type UserResponse struct {
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
}

// ToResponse converts a User to its API shape.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:   u.UserID,
		UserName: u.UserName,
	}
}
