package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// LineItem — строка платежной сессии; сумма в минорных единицах валюты.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest — параметры создания hosted checkout-сессии.
type SessionRequest struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// Checkout абстрагирует платежного провайдера: сервис заказов получает
// клиента через конструктор и в тестах подменяет его фейком.
type Checkout interface {
	// CreateSession создает сессию оплаты и возвращает URL для редиректа.
	CreateSession(ctx context.Context, req SessionRequest) (string, error)
}

// StripeCheckout — реализация Checkout поверх Stripe Checkout Sessions.
type StripeCheckout struct {
	api      *client.API
	currency string
}

func NewStripeCheckout(secretKey, currency string) *StripeCheckout {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeCheckout{api: api, currency: currency}
}

func (c *StripeCheckout) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(c.currency),
				UnitAmount: stripe.Int64(li.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  items,
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}
