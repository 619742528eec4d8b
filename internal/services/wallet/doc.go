/*
Package wallet owns user balances and the ledger behind them.

Every balance change goes through Post, which locks the wallet row, writes
exactly one WalletTransaction with BalanceBefore and BalanceAfter, and refuses
a reference that has already been used. Callers that settle trades pass their
own *gorm.DB transaction so the payout commits or rolls back with the trade:

	err := db.Transaction(func(tx *gorm.DB) error {
	    // update the trade row ...
	    _, err := wallets.Credit(ctx, tx, wallet.Operation{
	        UserID:    trade.UserID,
	        Amount:    trade.Payable,
	        Reference: trade.Reference + "-PAYOUT",
	        Source:    models.SourceGiftcardTrade,
	    })
	    return err
	})
	wallets.Invalidate(ctx, trade.UserID)

Withdrawals debit the wallet when requested and refund on decline. Card
funding creates a Stripe PaymentIntent and credits the wallet from the
payment_intent.succeeded webhook.
*/
package wallet
