package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order — заказ, связывающий пользователя, конфигурацию и рассчитанную цену.
// На пару (UserID, ConfigurationID) приходится не более одного заказа.
type Order struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	UserID          string          `json:"userId"`
	ConfigurationID string          `json:"configurationId"`
	IsPaid          bool            `json:"isPaid"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// PaymentIntent — данные для открытия транзакции у платёжного провайдера.
type PaymentIntent struct {
	ReferenceID string
	Amount      int64 // в минимальных единицах валюты
	Currency    string
	ItemName    string
}

// Transaction — открытая у провайдера транзакция.
type Transaction struct {
	ID     string
	Status string
}

const (
	EventOrderCreated     = "order.created"
	EventPaymentInitiated = "payment.initiated"
)

// OrderEvent — событие жизненного цикла заказа для внешних подписчиков.
type OrderEvent struct {
	Type            string    `json:"type"`
	OrderID         string    `json:"orderId"`
	UserID          string    `json:"userId"`
	ConfigurationID string    `json:"configurationId"`
	Amount          string    `json:"amount"`
	TransactionID   string    `json:"transactionId,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}
