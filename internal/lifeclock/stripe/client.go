// Package stripe adapts the Stripe SDK to the service.CheckoutProvider
// boundary.
package stripe

import (
	"context"
	"fmt"

	stripesdk "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
)

// Provider implements service.CheckoutProvider against the Stripe Checkout
// API.
type Provider struct {
	api *client.API
}

// New creates a Provider with the given secret key.
func New(secretKey string) *Provider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Provider{api: api}
}

func (p *Provider) CreateSession(
	ctx context.Context,
	in service.CreateSessionParams,
) (service.CheckoutSession, error) {
	params := &stripesdk.CheckoutSessionParams{
		Params: stripesdk.Params{Context: ctx},
		Mode:   stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{
				Price:    stripesdk.String(in.PriceID),
				Quantity: stripesdk.Int64(1),
			},
		},
		SuccessURL: stripesdk.String(in.SuccessURL),
		CancelURL:  stripesdk.String(in.CancelURL),
		// Checkout page language is fixed to English.
		Locale: stripesdk.String("en"),
		// Customers may enter promotion codes on the hosted page.
		AllowPromotionCodes: stripesdk.Bool(true),
		CustomText: &stripesdk.CheckoutSessionCustomTextParams{
			Submit: &stripesdk.CheckoutSessionCustomTextSubmitParams{
				Message: stripesdk.String("7-day money-back guarantee"),
			},
		},
		// Email is entered by the customer on the checkout page itself.
		// Wallet buttons (Apple/Google Pay) ride along with "card".
		PaymentMethodTypes: stripesdk.StringSlice([]string{"card"}),
		PaymentMethodOptions: &stripesdk.CheckoutSessionPaymentMethodOptionsParams{
			Card: &stripesdk.CheckoutSessionPaymentMethodOptionsCardParams{
				RequestThreeDSecure: stripesdk.String("automatic"),
			},
		},
		AutomaticTax: &stripesdk.CheckoutSessionAutomaticTaxParams{
			Enabled: stripesdk.Bool(true),
		},
		PaymentIntentData: &stripesdk.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"referral_code":  in.ReferralCode,
				"referred_email": in.ReferredEmail,
			},
		},
	}
	params.AddMetadata("referral_code", in.ReferralCode)
	params.AddMetadata("referred_email", in.ReferredEmail)
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return service.CheckoutSession{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return mapSession(sess), nil
}

func (p *Provider) GetSession(ctx context.Context, id string) (service.CheckoutSession, error) {
	sess, err := p.api.CheckoutSessions.Get(id, &stripesdk.CheckoutSessionParams{
		Params: stripesdk.Params{Context: ctx},
	})
	if err != nil {
		return service.CheckoutSession{}, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}
	return mapSession(sess), nil
}

func mapSession(sess *stripesdk.CheckoutSession) service.CheckoutSession {
	out := service.CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sess.CustomerEmail,
	}
	// CustomerDetails carries the email the customer actually typed on the
	// hosted page; prefer it over the pre-filled customer email.
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		out.CustomerEmail = sess.CustomerDetails.Email
	}
	if sess.Metadata != nil {
		out.ReferralCode = sess.Metadata["referral_code"]
	}
	return out
}
