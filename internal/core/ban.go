package core

import (
	"time"

	"github.com/vovakirdan/chatroom-server/internal/store"
)

// IsBanned reports whether ban is still in effect on today.
// End dates are yyyy-MM-dd strings (store.BanDateLayout), which sort like dates.
func IsBanned(ban *store.Ban, today time.Time) bool {
	if ban == nil {
		return false
	}
	return ban.EndDate > today.Format(store.BanDateLayout)
}
