package model

import "time"

// User represents a member account as stored in the `users` table. The id
// is chosen by the user at signup and is immutable afterwards. The
// Responsibility tags are expanded into authority strings through the
// settings catalog at token issuance; authorities are never stored here.
//
// Fields:
//
//	ID             – login identifier, primary key.
//	Name           – display name.
//	PasswordHash   – bcrypt hashed password.
//	Approval       – whether the account has been approved by an admin.
//	Department     – organizational unit.
//	Responsibility – role/category tags (e.g. "임원진").
//	PhoneNumber    – contact number.
//	Email          – contact email.
//	Birthday       – birth date as provided at signup.
//	Comments       – free-form note.
//	Photo          – URL/path of the profile photo blob, empty if none.
//	CreatedAt      – timestamp of creation.
//	UpdatedAt      – timestamp of last update.
type User struct {
	ID             string    // users.id
	Name           string    // users.name
	PasswordHash   string    // users.password_hash
	Approval       bool      // users.approval
	Department     string    // users.department
	Responsibility []string  // users.responsibility (JSON column)
	PhoneNumber    string    // users.phone_number
	Email          string    // users.email
	Birthday       string    // users.birthday
	Comments       string    // users.comments
	Photo          string    // users.photo (empty when unset)
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}
