package domain

import "strings"

// Side represents the side of a trade (buy or sell).
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide normalizes a string into a Side. Returns false if the value
// is not a recognized side.
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, true
	case Sell:
		return Sell, true
	default:
		return "", false
	}
}

// EventKind distinguishes executed trades from pending orders.
// Pending orders are inert: they never contribute to positions or cash
// until they are filled.
type EventKind string

const (
	KindTrade EventKind = "trade"
	KindOrder EventKind = "order"
)

// ParseEventKind normalizes a string into an EventKind. An empty value
// defaults to KindTrade, matching how untagged records are treated.
func ParseEventKind(s string) (EventKind, bool) {
	switch EventKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTrade, "":
		return KindTrade, true
	case KindOrder:
		return KindOrder, true
	default:
		return "", false
	}
}

// CashKind represents the direction of a cash movement.
type CashKind string

const (
	Deposit    CashKind = "deposit"
	Withdrawal CashKind = "withdrawal"
)

// ParseCashKind normalizes a string into a CashKind.
func ParseCashKind(s string) (CashKind, bool) {
	switch CashKind(strings.ToLower(strings.TrimSpace(s))) {
	case Deposit:
		return Deposit, true
	case Withdrawal:
		return Withdrawal, true
	default:
		return "", false
	}
}

// NormalizeTicker uppercases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
