package model

import "time"

type EncryptionMode string
type ContestStatus string

const (
	ModePublic   EncryptionMode = "Public"
	ModePassword EncryptionMode = "Password"
	ModePrivate  EncryptionMode = "Private"

	StatusAvailable ContestStatus = "Available"
	StatusReserved  ContestStatus = "Reserved"
)

func (m EncryptionMode) Valid() bool {
	return m == ModePublic || m == ModePassword || m == ModePrivate
}

func (s ContestStatus) Valid() bool {
	return s == StatusAvailable || s == StatusReserved
}

type Contest struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	StartAt        time.Time      `json:"start_at"`
	EndAt          time.Time      `json:"end_at"`
	ProblemList    []int64        `json:"problem_list"`
	EncryptionMode EncryptionMode `json:"encryption_mode"`
	Secret         string         `json:"secret,omitempty"`      // password for Password mode
	InviteList     []string       `json:"invite_list,omitempty"` // usernames for Private mode
	Status         ContestStatus  `json:"status"`
	CreatorID      string         `json:"creator_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Started reports whether the contest window has opened at the given instant.
func (c *Contest) Started(now time.Time) bool {
	return !now.Before(c.StartAt)
}

// Invited reports whether username appears in the invite list.
func (c *Contest) Invited(username string) bool {
	for _, u := range c.InviteList {
		if u == username {
			return true
		}
	}
	return false
}

// Sanitize strips verification material before the contest is shown to a
// non-privileged viewer.
func (c *Contest) Sanitize() {
	c.Secret = ""
	c.InviteList = nil
}
