// Package pricing считает стоимость конфигурации в минимальных единицах валюты.
package pricing

import (
	"fmt"

	"github.com/example/configurator-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

// Table — базовая цена и надбавки за опции. После загрузки только читается.
type Table struct {
	Base     int64
	Currency string
	Finish   map[domain.Finish]int64
	Material map[domain.Material]int64
}

// DefaultTable — цены каталога по умолчанию.
func DefaultTable() Table {
	return Table{
		Base:     14_00,
		Currency: "USD",
		Finish: map[domain.Finish]int64{
			domain.FinishDefault:  0,
			domain.FinishTextured: 3_00,
		},
		Material: map[domain.Material]int64{
			domain.MaterialDefault:       0,
			domain.MaterialPolycarbonate: 5_00,
		},
	}
}

// Validate отклоняет отрицательные цены и пустую валюту.
func (t Table) Validate() error {
	if t.Base < 0 {
		return fmt.Errorf("%w: negative base price %d", domain.ErrValidation, t.Base)
	}
	if t.Currency == "" {
		return fmt.Errorf("%w: currency is required", domain.ErrValidation)
	}
	for k, v := range t.Finish {
		if v < 0 {
			return fmt.Errorf("%w: negative surcharge for finish %q", domain.ErrValidation, k)
		}
	}
	for k, v := range t.Material {
		if v < 0 {
			return fmt.Errorf("%w: negative surcharge for material %q", domain.ErrValidation, k)
		}
	}
	return nil
}

// ComputePrice складывает базовую цену и надбавки за отделку и материал.
// Значение опции, которого нет в таблице, надбавки не даёт.
func (t Table) ComputePrice(c domain.Configuration) int64 {
	price := t.Base
	price += t.Finish[c.Finish]
	price += t.Material[c.Material]
	return price
}

// ToMajor переводит минимальные единицы в основные: 1150 -> 11.50.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatMajor форматирует сумму с двумя знаками после точки: 1050 -> "10.50".
func FormatMajor(minor int64) string {
	return ToMajor(minor).StringFixed(2)
}
