package domain

import "time"

// Customer — клиент, принадлежащий ровно одному продавцу. SellerID
// выставляется при создании и никогда не переназначается; используется
// только для контроля доступа, каскадных удалений нет.
type Customer struct {
	ID        string
	Name      string
	Surname   string
	Company   string
	Email     string
	Phone     string
	SellerID  string
	CreatedAt time.Time
}

// ValidateInvariants проверяет обязательные поля клиента.
func (c *Customer) ValidateInvariants() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrEmailRequired)
	}

	return errs
}
