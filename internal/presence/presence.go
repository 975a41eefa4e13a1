package presence

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	Online  Status = "ONLINE"
	Offline Status = "OFFLINE"
	Joined  Status = "JOINED"
	Left    Status = "LEFT"
)

// GlobalRoom is the room every connection status change is announced in.
const GlobalRoom = "global"

type Update struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// SubscriptionID is the key a user's subscription to a topic is stored under.
func SubscriptionID(userID uuid.UUID, topic string) string {
	return userID.String() + ":" + topic
}
