package models

import "time"

type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Role      string    `json:"role,omitempty" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`

	ProfilePicKey *string `json:"-" db:"profile_pic_key"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty" db:"-"`
}
