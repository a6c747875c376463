package dto

import "time"

// AuthRequest describes operator credentials.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// OperatorResponse describes an operator account and its prompt channel.
type OperatorResponse struct {
	ID        int64      `json:"id"`
	Login     string     `json:"login"`
	Channel   string     `json:"channel"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
