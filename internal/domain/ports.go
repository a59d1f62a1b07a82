package domain

import (
	"context"
	"errors"
)

// ConfigurationStore — порт чтения конфигураций изделия.
type ConfigurationStore interface {
	// Get возвращает ErrConfigurationNotFound, если конфигурации нет.
	Get(ctx context.Context, id string) (Configuration, error)
}

// OrderRepository — порт для операций персистентности заказов.
type OrderRepository interface {
	FindByUserAndConfiguration(ctx context.Context, userID, configurationID string) (Order, bool, error)
	// Create возвращает ErrOrderExists, если заказ на ту же пару уже сохранён.
	Create(ctx context.Context, o Order) error
}

// SessionProvider — порт получения текущего пользователя.
type SessionProvider interface {
	// CurrentUser возвращает ErrUserNotFound, если пользователь не аутентифицирован.
	CurrentUser(ctx context.Context) (User, error)
}

// PaymentProvider — порт платёжного провайдера.
type PaymentProvider interface {
	CreateTransaction(ctx context.Context, intent PaymentIntent) (Transaction, error)
}

// EventPublisher — порт публикации событий заказа.
type EventPublisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// MessageSubscriber — порт подписчика на входящие сообщения.
type MessageSubscriber interface {
	// Subscribe регистрирует обработчик; ack/повторные доставки реализует адаптер.
	Subscribe(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error
}

// Общие доменные ошибки
var (
	ErrConfigurationNotFound = notFoundError("configuration not found")
	ErrUserNotFound          = notFoundError("user not found")
	ErrOrderExists           = conflictError("order already exists")
	ErrValidation            = validationError("invalid data")
	ErrStoreFailure          = failureError("store failure")
	ErrProviderFailure       = failureError("payment provider failure")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

type conflictError string

func (e conflictError) Error() string { return string(e) }

type validationError string

func (e validationError) Error() string { return string(e) }

type failureError string

func (e failureError) Error() string { return string(e) }

// IsNotFound сообщает, относится ли ошибка к отсутствующей сущности.
func IsNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf)
}

// IsValidation сообщает, вызвана ли ошибка некорректными входными данными.
func IsValidation(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}
