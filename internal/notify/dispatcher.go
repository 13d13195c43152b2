// Package notify delivers best-effort side-channel notifications to
// HubSpot and Slack. Every delivery is fire-and-forget: failures are
// logged and never reach the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/georgebier67/myedspace-referrals/internal/model"
)

const dispatchTimeout = 15 * time.Second

// Dispatcher runs each notification in its own goroutine with a bounded
// context, logging errors to its own sink.
type Dispatcher struct {
	hubspot *HubSpotClient
	slack   *SlackClient
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(hubspot *HubSpotClient, slack *SlackClient, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		hubspot: hubspot,
		slack:   slack,
		log:     log,
	}
}

// Wait blocks until all in-flight notifications finish. Used on shutdown
// and in tests; request handlers never call it.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(event string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			d.log.Error("notification failed",
				zap.String("event", event),
				zap.Error(err))
		}
	}()
}

// ReferrerRegistered submits the new referrer to the campaign's HubSpot
// form (or the default form when the campaign has none).
func (d *Dispatcher) ReferrerRegistered(referrer *model.Referrer, campaign *model.Campaign) {
	portalID, formGUID := campaignForm(campaign, false)
	first, last := SplitName(referrer.Name)
	fields := map[string]string{
		"email":         referrer.Email,
		"firstname":     first,
		"lastname":      last,
		"referral_link": referrer.ReferralLink,
	}

	d.dispatch("referrer_registered", func(ctx context.Context) error {
		return d.hubspot.SubmitForm(ctx, portalID, formGUID, "Referral Registration", fields)
	})
}

// ReferralCreated submits the friend to HubSpot and announces the signup
// in Slack.
func (d *Dispatcher) ReferralCreated(referral *model.Referral, referrer *model.Referrer, campaign *model.Campaign) {
	portalID, formGUID := campaignForm(campaign, true)
	if formGUID == "" {
		formGUID = d.hubspot.FriendFormGUID()
	}
	first, last := SplitName(referral.ReferredName)
	fields := map[string]string{
		"email":       referral.ReferredEmail,
		"firstname":   first,
		"lastname":    last,
		"phone":       referral.ReferredPhone,
		"referred_by": referrer.Email,
	}

	d.dispatch("referral_created_hubspot", func(ctx context.Context) error {
		return d.hubspot.SubmitForm(ctx, portalID, formGUID, "Friend Signup", fields)
	})

	message := newReferralMessage(referrer.Name, referral.ReferredName, referral.ReferredEmail)
	d.dispatch("referral_created_slack", func(ctx context.Context) error {
		return d.slack.Notify(ctx, message)
	})
}

// ReferralQualified announces reward eligibility in Slack and tags the
// referrer's CRM contact so the reward email automation fires.
func (d *Dispatcher) ReferralQualified(referral *model.Referral, reward string) {
	message := referralQualifiedMessage(
		referral.ReferrerName, referral.ReferrerEmail, referral.ReferredName, reward)
	d.dispatch("referral_qualified_slack", func(ctx context.Context) error {
		return d.slack.Notify(ctx, message)
	})

	props := map[string]string{
		"referral_reward_status":    "qualified",
		"referral_qualified_friend": referral.ReferredName,
	}
	email := referral.ReferrerEmail
	d.dispatch("referral_qualified_hubspot", func(ctx context.Context) error {
		return d.hubspot.UpdateContactProperties(ctx, email, props)
	})
}

// campaignForm resolves the per-campaign HubSpot overrides; empty values
// let the client fall back to its configured defaults.
func campaignForm(campaign *model.Campaign, friend bool) (portalID, formGUID string) {
	if campaign == nil {
		return "", ""
	}
	if campaign.HubSpotPortalID != nil {
		portalID = *campaign.HubSpotPortalID
	}
	guid := campaign.HubSpotFormGUID
	if friend {
		guid = campaign.HubSpotFriendFormGUID
	}
	if guid != nil {
		formGUID = *guid
	}
	return portalID, formGUID
}
