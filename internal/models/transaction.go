package models

// Trade statuses shared by giftcard and asset transactions
const (
	TradePending           = "pending"
	TradeApproved          = "approved"
	TradePartiallyApproved = "partially_approved"
	TradeDeclined          = "declined"
	TradeTransferred       = "transferred"
)

// Trade sides. A sell pays the user, a buy delivers an asset to the user.
const (
	SideSell = "sell"
	SideBuy  = "buy"
)

var sellTransitions = map[string][]string{
	TradePending: {TradeApproved, TradePartiallyApproved, TradeDeclined},
}

var buyTransitions = map[string][]string{
	TradePending: {TradeTransferred, TradeDeclined},
}

// CanTransition reports whether a trade on the given side may move from one status to another.
func CanTransition(side, from, to string) bool {
	table := sellTransitions
	if side == SideBuy {
		table = buyTransitions
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsSettled reports whether the status pays out or delivers.
func IsSettled(status string) bool {
	switch status {
	case TradeApproved, TradePartiallyApproved, TradeTransferred:
		return true
	}
	return false
}

// IsTradeStatus validates review input.
func IsTradeStatus(status string) bool {
	switch status {
	case TradePending, TradeApproved, TradePartiallyApproved, TradeDeclined, TradeTransferred:
		return true
	}
	return false
}
