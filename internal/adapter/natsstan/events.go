package natsstan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/configurator-checkout/internal/domain"
)

// DecodeEvents оборачивает обработчик событий заказа в обработчик сырых
// сообщений. Сообщения без типа или заказа отклоняются и не подтверждаются.
func DecodeEvents(handle func(ctx context.Context, e domain.OrderEvent) error) func(ctx context.Context, raw []byte) error {
	return func(ctx context.Context, raw []byte) error {
		var e domain.OrderEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if e.Type == "" || e.OrderID == "" {
			return domain.ErrValidation
		}
		return handle(ctx, e)
	}
}
