// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
)

// User is an account record. PasswordHash never leaves the server: it is
// skipped by JSON encoding and left empty by profile reads.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,account_email"`
	PasswordHash string `json:"-" validate:"required"`
	Age          int    `json:"age" validate:"required,min=1,max=2147483647"`
	DOB          Date   `json:"dob" validate:"required"`
	Contact      string `json:"contact" validate:"required,contact_number"`
}

// ProfileUpdate holds the fields a user may change on their own record.
type ProfileUpdate struct {
	Name    string
	Age     int
	DOB     Date
	Contact string
}

// Normalize trims the name and lowercases the email the way the store
// keeps them.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// Validate checks every field constraint of a new record.
func (u *User) Validate() error {
	return toValidationError(validate.Struct(u))
}

// Apply copies the update onto u.
func (p ProfileUpdate) Apply(u *User) {
	u.Name = strings.TrimSpace(p.Name)
	u.Age = p.Age
	u.DOB = p.DOB
	u.Contact = p.Contact
}

// Validate checks the mutable fields only.
func (p ProfileUpdate) Validate() error {
	u := &User{}
	p.Apply(u)
	return toValidationError(validate.StructPartial(u, "Name", "Age", "DOB", "Contact"))
}
