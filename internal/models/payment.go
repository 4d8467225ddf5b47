package models

const CurrencyUSD = "usd"

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
