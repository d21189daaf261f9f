package models

import "time"

// RoomKind distinguishes lecture rooms from practice labs.
type RoomKind string

const (
	RoomKindTheory RoomKind = "THEORY"
	RoomKindLab    RoomKind = "LAB"
)

// Room represents a bookable teaching room.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Building  *string   `db:"building" json:"building,omitempty"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Kind      RoomKind  `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter defines filter criteria for listing rooms.
type RoomFilter struct {
	Kind      RoomKind
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
