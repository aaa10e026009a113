package meetings

import (
	"time"

	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// Meeting is the persisted metadata behind a meeting code. The live
// membership for the code lives in the coordinator, never here.
type Meeting struct {
	Code         domain.RoomID `bson:"code" json:"code"`
	Title        string        `bson:"title" json:"title"`
	HostName     string        `bson:"host_name" json:"hostName"`
	PasswordHash string        `bson:"password_hash,omitempty" json:"-"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
}

func (m *Meeting) RequiresPassword() bool {
	return m.PasswordHash != ""
}

// cachedMeta is the subset of Meeting kept in the redis read-through
// cache on the join hot path.
type cachedMeta struct {
	Exists           bool `json:"exists"`
	RequiresPassword bool `json:"requiresPassword"`
}
