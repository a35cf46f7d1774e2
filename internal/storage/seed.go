package storage

import "tripwallet/internal/core"

// DefaultCountries is the reference data seeded at first run. IDs are
// auto-assigned; the set is additive across releases, never shrunk.
var DefaultCountries = []core.Country{
	{Name: "United States", Flag: "🇺🇸", Currency: "USD"},
	{Name: "Euro Area", Flag: "🇪🇺", Currency: "EUR"},
	{Name: "United Kingdom", Flag: "🇬🇧", Currency: "GBP"},
	{Name: "Japan", Flag: "🇯🇵", Currency: "JPY"},
	{Name: "Switzerland", Flag: "🇨🇭", Currency: "CHF"},
	{Name: "Canada", Flag: "🇨🇦", Currency: "CAD"},
	{Name: "Australia", Flag: "🇦🇺", Currency: "AUD"},
	{Name: "Norway", Flag: "🇳🇴", Currency: "NOK"},
	{Name: "Sweden", Flag: "🇸🇪", Currency: "SEK"},
	{Name: "Denmark", Flag: "🇩🇰", Currency: "DKK"},
	{Name: "Poland", Flag: "🇵🇱", Currency: "PLN"},
	{Name: "Czechia", Flag: "🇨🇿", Currency: "CZK"},
	{Name: "Hungary", Flag: "🇭🇺", Currency: "HUF"},
	{Name: "Turkey", Flag: "🇹🇷", Currency: "TRY"},
	{Name: "Thailand", Flag: "🇹🇭", Currency: "THB"},
	{Name: "Vietnam", Flag: "🇻🇳", Currency: "VND"},
	{Name: "Indonesia", Flag: "🇮🇩", Currency: "IDR"},
	{Name: "Malaysia", Flag: "🇲🇾", Currency: "MYR"},
	{Name: "Singapore", Flag: "🇸🇬", Currency: "SGD"},
	{Name: "South Korea", Flag: "🇰🇷", Currency: "KRW"},
	{Name: "China", Flag: "🇨🇳", Currency: "CNY"},
	{Name: "India", Flag: "🇮🇳", Currency: "INR"},
	{Name: "Mexico", Flag: "🇲🇽", Currency: "MXN"},
	{Name: "Brazil", Flag: "🇧🇷", Currency: "BRL"},
	{Name: "Argentina", Flag: "🇦🇷", Currency: "ARS"},
	{Name: "South Africa", Flag: "🇿🇦", Currency: "ZAR"},
	{Name: "Egypt", Flag: "🇪🇬", Currency: "EGP"},
	{Name: "Morocco", Flag: "🇲🇦", Currency: "MAD"},
	{Name: "United Arab Emirates", Flag: "🇦🇪", Currency: "AED"},
	{Name: "New Zealand", Flag: "🇳🇿", Currency: "NZD"},
}
