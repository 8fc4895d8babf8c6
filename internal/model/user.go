package model

// CurrentUserID is the identifier given to the signed-in user.
const CurrentUserID = "user_current"

// User is one member of the family roster.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Status Status `json:"status"`

	// LastLocation is nil until a reading is known.
	LastLocation *Location `json:"last_location,omitempty"`

	// IsCurrentUser marks the member controlled by this session.
	// Exactly one member in a roster has it set.
	IsCurrentUser bool `json:"is_current_user,omitempty"`

	// IsPinging is true while a safety ping is being shown on the card.
	IsPinging bool `json:"is_pinging,omitempty"`
}

// NewCurrentUser returns the roster entry for the signed-in user.
func NewCurrentUser(name string) User {
	return User{
		ID:            CurrentUserID,
		Name:          name,
		Status:        StatusOnline,
		IsCurrentUser: true,
	}
}

// IsOnline reports whether the member is shown as online.
func (u User) IsOnline() bool {
	return u.Status == StatusOnline
}

// CloneUsers copies a roster, including each member's location pointer
// target, so snapshots can be handed out without sharing state.
func CloneUsers(users []User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		if u.LastLocation != nil {
			loc := *u.LastLocation
			u.LastLocation = &loc
		}
		out[i] = u
	}
	return out
}
