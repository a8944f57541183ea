// README: Common money value object used across modules.
package types

import "fmt"

// Money is an amount in the currency's smallest unit (e.g. cents).
type Money struct {
	Amount   int64
	Currency string
}

// Times returns the money multiplied by n. Used to freeze a total
// price from a per-seat price at booking time.
func (m Money) Times(n int) Money {
	return Money{Amount: m.Amount * int64(n), Currency: m.Currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
