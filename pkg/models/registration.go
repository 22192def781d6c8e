package models

import "time"

// Registration is a guest's RSVP for one or more program items.
type Registration struct {
	ID        string    `json:"id" firestore:"id"`
	FullName  string    `json:"fullName" firestore:"fullName"`
	Email     string    `json:"email" firestore:"email"`
	PartySize int       `json:"partySize" firestore:"partySize"`
	Attending []string  `json:"attending" firestore:"attending"`
	Message   string    `json:"message" firestore:"message"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
