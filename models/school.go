package models

import "time"

type School struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	ContactDetails string    `json:"contact_details"`
	Domain         string    `json:"domain"`
	PasskeyHash    string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
