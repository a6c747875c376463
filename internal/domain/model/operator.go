package model

import (
	"strconv"
	"time"
)

// Operator represents a business representative who runs purchase workflows.
type Operator struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// ChannelID identifies the conversation endpoint of an operator.
type ChannelID int64

// Channel returns the channel the operator receives workflow prompts on.
func (o Operator) Channel() ChannelID {
	return ChannelID(o.ID)
}

func (c ChannelID) String() string {
	return strconv.FormatInt(int64(c), 10)
}
