package models

import "github.com/shopspring/decimal"

// DashboardStats is the back-office overview.
type DashboardStats struct {
	TotalUsers             int64           `json:"total_users"`
	VerifiedUsers          int64           `json:"verified_users"`
	PendingGiftcardTrades  int64           `json:"pending_giftcard_trades"`
	PendingAssetTrades     int64           `json:"pending_asset_trades"`
	PendingWithdrawals     int64           `json:"pending_withdrawals"`
	PendingKYC             int64           `json:"pending_kyc"`
	TotalWalletBalance     decimal.Decimal `json:"total_wallet_balance"`
	TodayGiftcardPayouts   decimal.Decimal `json:"today_giftcard_payouts"`
	TodayAssetPayouts      decimal.Decimal `json:"today_asset_payouts"`
	TodaySettledTradeCount int64           `json:"today_settled_trade_count"`
}
