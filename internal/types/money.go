// README: Common money value object used across modules.
package types

// Money is an amount in the currency's minor unit (cents for USD).
type Money struct {
	Amount   int64
	Currency string
}

func USD(cents int64) Money {
	return Money{Amount: cents, Currency: "USD"}
}
