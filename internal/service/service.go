package service

import (
	"regexp"

	"github.com/georgebier67/myedspace-referrals/internal/model"
)

// emailPattern is a syntactic local@domain.tld check; deliverability is
// not verified.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Notifier receives domain events for best-effort external delivery.
// Implementations must never block; errors stay on their side.
type Notifier interface {
	ReferrerRegistered(referrer *model.Referrer, campaign *model.Campaign)
	ReferralCreated(referral *model.Referral, referrer *model.Referrer, campaign *model.Campaign)
	ReferralQualified(referral *model.Referral, reward string)
}
