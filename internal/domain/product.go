package domain

import "time"

// Product — позиция каталога. Остаток (Available) уменьшается workflow
// резервирования и никогда не уходит в минус.
type Product struct {
	ID        string
	Name      string
	Price     float64
	Available int32
	CreatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Available < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
