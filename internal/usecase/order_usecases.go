package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/configurator-checkout/internal/domain"
	"github.com/example/configurator-checkout/internal/pricing"
	"github.com/google/uuid"
)

// OrderResult — заказ вместе с ценой, рассчитанной в этом вызове.
type OrderResult struct {
	Order   domain.Order
	Price   int64
	Created bool
}

// CreateOrder — найти заказ пользователя на конфигурацию или создать новый.
type CreateOrder struct {
	Configurations domain.ConfigurationStore
	Sessions       domain.SessionProvider
	Orders         domain.OrderRepository
	Prices         pricing.Table
	Events         domain.EventPublisher
	// NewID и Now подменяются в тестах.
	NewID func() string
	Now   func() time.Time
}

func (uc CreateOrder) Execute(ctx context.Context, configurationID string) (OrderResult, error) {
	cfg, err := uc.Configurations.Get(ctx, configurationID)
	if err != nil {
		return OrderResult{}, err
	}
	user, err := uc.Sessions.CurrentUser(ctx)
	if err != nil {
		return OrderResult{}, err
	}

	price := uc.Prices.ComputePrice(cfg)

	existing, found, err := uc.Orders.FindByUserAndConfiguration(ctx, user.ID, cfg.ID)
	if err != nil {
		return OrderResult{}, err
	}
	if found {
		// сумма существующего заказа не пересчитывается
		return OrderResult{Order: existing, Price: price}, nil
	}

	o := domain.Order{
		ID:              uc.newID(),
		Amount:          pricing.ToMajor(price),
		UserID:          user.ID,
		ConfigurationID: cfg.ID,
		CreatedAt:       uc.now(),
	}
	if err := uc.Orders.Create(ctx, o); err != nil {
		if !errors.Is(err, domain.ErrOrderExists) {
			return OrderResult{}, err
		}
		// параллельный запрос успел создать заказ на ту же пару
		winner, found, err := uc.Orders.FindByUserAndConfiguration(ctx, user.ID, cfg.ID)
		if err != nil {
			return OrderResult{}, err
		}
		if !found {
			return OrderResult{}, fmt.Errorf("%w: order for user %s and configuration %s vanished after conflict",
				domain.ErrStoreFailure, user.ID, cfg.ID)
		}
		return OrderResult{Order: winner, Price: price}, nil
	}

	log.Printf("created order %s user=%s configuration=%s amount=%s", o.ID, o.UserID, o.ConfigurationID, pricing.FormatMajor(price))
	publish(ctx, uc.Events, domain.OrderEvent{
		Type:            domain.EventOrderCreated,
		OrderID:         o.ID,
		UserID:          o.UserID,
		ConfigurationID: o.ConfigurationID,
		Amount:          pricing.FormatMajor(price),
		OccurredAt:      o.CreatedAt,
	})
	return OrderResult{Order: o, Price: price, Created: true}, nil
}

func (uc CreateOrder) newID() string {
	if uc.NewID != nil {
		return uc.NewID()
	}
	return uuid.NewString()
}

func (uc CreateOrder) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

// PaymentResult — идентификатор транзакции провайдера и согласованный заказ.
type PaymentResult struct {
	TransactionID string
	Order         domain.Order
}

// CreatePayment — согласовать заказ и открыть под него транзакцию у провайдера.
// Ошибки провайдера не повторяются.
type CreatePayment struct {
	Orders   CreateOrder
	Payments domain.PaymentProvider
	Events   domain.EventPublisher
	ItemName string
}

const defaultItemName = "Customized product"

func (uc CreatePayment) Execute(ctx context.Context, configurationID string) (PaymentResult, error) {
	res, err := uc.Orders.Execute(ctx, configurationID)
	if err != nil {
		return PaymentResult{}, err
	}

	itemName := uc.ItemName
	if itemName == "" {
		itemName = defaultItemName
	}
	tx, err := uc.Payments.CreateTransaction(ctx, domain.PaymentIntent{
		ReferenceID: res.Order.ID,
		Amount:      res.Price,
		Currency:    uc.Orders.Prices.Currency,
		ItemName:    itemName,
	})
	if err != nil {
		return PaymentResult{}, err
	}

	log.Printf("opened transaction %s for order %s amount=%s", tx.ID, res.Order.ID, pricing.FormatMajor(res.Price))
	publish(ctx, uc.Events, domain.OrderEvent{
		Type:            domain.EventPaymentInitiated,
		OrderID:         res.Order.ID,
		UserID:          res.Order.UserID,
		ConfigurationID: res.Order.ConfigurationID,
		Amount:          pricing.FormatMajor(res.Price),
		TransactionID:   tx.ID,
		OccurredAt:      time.Now().UTC(),
	})
	return PaymentResult{TransactionID: tx.ID, Order: res.Order}, nil
}

// publish не прерывает запрос: сбой публикации только логируется.
func publish(ctx context.Context, p domain.EventPublisher, e domain.OrderEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("publish %s for order %s: %v", e.Type, e.OrderID, err)
	}
}
