package enums

// Currency names the monetary denomination used for gateway orders.
type Currency string

const (
	// CurrencyINR is the only currency the gateway is configured for today.
	CurrencyINR Currency = "INR"
)

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}
