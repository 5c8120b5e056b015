package model

import "time"

// Problem carries only what contest validation and listings need; the judging
// side of problems lives in the external executor system.
type Problem struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
