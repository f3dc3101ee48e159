package model

import "time"

type Room struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Capacity  int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
	Location  string    `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
