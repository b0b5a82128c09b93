// Package model defines domain entities for the application.
package model

// User represents a user record owned by the user store.
// Values are copied in and out of the store; callers never share
// memory with stored records.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// UserInput carries a partial set of user fields.
// A nil field means "not provided": on create it is filled with a
// generated default, on update the stored value is kept.
type UserInput struct {
	Name  *string
	Email *string
	Age   *int
}

// Apply merges the provided fields over u and returns the result.
// The ID is never touched.
func (in UserInput) Apply(u User) User {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Age != nil {
		u.Age = *in.Age
	}
	return u
}
