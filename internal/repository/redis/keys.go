package redisrepo

import (
	"fmt"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
)

const ns = "parktix:v1"

func KeyParkAvailability(parkID int64, day time.Time) string {
	return fmt.Sprintf("%s:park:%d:availability:%s", ns, parkID, domain.FormatDate(day))
}

func KeyIdemCheckout(userID int64, idemKey string) string {
	return fmt.Sprintf("%s:idem:checkout:%d:%s", ns, userID, idemKey)
}

// KeyRateLimit is the limiter prefix for scope; the limiter appends the
// caller key.
func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelParkDayChanged() string {
	return ns + ":parkday:changed"
}
