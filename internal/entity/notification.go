package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// MaxNotifications caps how many notifications a user document keeps;
// the sweep trims to the newest ones past this.
const MaxNotifications = 20

type Notification struct {
	ID        primitive.ObjectID `json:"_id"`
	TaskID    primitive.ObjectID `json:"taskId"`
	Message   string             `json:"message"`
	Severity  string             `json:"severity"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"createdAt"`
}
