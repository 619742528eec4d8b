package wallet

import (
	"context"
	"errors"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/testutil"
	"tradedesk/internal/utils/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	svc := NewService(Deps{DB: db}, Config{
		Currency:      cfg.Wallet.Currency,
		MinWithdrawal: cfg.Wallet.MinWithdrawal,
	})
	return svc, db
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func TestWalletService_Post(t *testing.T) {
	svc, db := newTestService(t)
	user := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	ctx := context.Background()

	credit, err := svc.Credit(ctx, nil, Operation{UserID: user.ID, Amount: amount("100"), Reference: "T-1", Source: models.SourceAdjustment})
	require.NoError(t, err)
	assertAmount(t, "0.00", credit.BalanceBefore)
	assertAmount(t, "100.00", credit.BalanceAfter)

	debit, err := svc.Debit(ctx, nil, Operation{UserID: user.ID, Amount: amount("40.255"), Reference: "T-2", Source: models.SourceAdjustment})
	require.NoError(t, err)
	assertAmount(t, "40.26", debit.Amount)
	assertAmount(t, "59.74", debit.BalanceAfter)
	assertAmount(t, "59.74", testutil.Balance(t, db, user.ID))

	history, total, err := svc.History(ctx, user.ID, pagination.NewQuery(nil))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "T-2", history[0].Reference)
}

func TestWalletService_PostRejects(t *testing.T) {
	svc, db := newTestService(t)
	user := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	ctx := context.Background()
	testutil.SetBalance(t, db, user.ID, "50")

	tests := []struct {
		name string
		op   Operation
		want error
	}{
		{"zero amount", Operation{UserID: user.ID, Type: models.EntryCredit, Amount: decimal.Zero, Reference: "R-0"}, ErrInvalidAmount},
		{"unknown type", Operation{UserID: user.ID, Type: "transfer", Amount: amount("1"), Reference: "R-1"}, ErrInvalidOperation},
		{"missing reference", Operation{UserID: user.ID, Type: models.EntryCredit, Amount: amount("1")}, ErrMissingReference},
		{"overdraw", Operation{UserID: user.ID, Type: models.EntryDebit, Amount: amount("50.01"), Reference: "R-2"}, ErrInsufficientBalance},
		{"no wallet", Operation{UserID: 9999, Type: models.EntryCredit, Amount: amount("1"), Reference: "R-3"}, ErrWalletNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Post(ctx, nil, tt.op)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assertAmount(t, "50.00", testutil.Balance(t, db, user.ID))
}

func TestWalletService_DuplicateReference(t *testing.T) {
	svc, db := newTestService(t)
	user := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	ctx := context.Background()

	op := Operation{UserID: user.ID, Amount: amount("25"), Reference: "GCT-1-PAYOUT", Source: models.SourceGiftcardTrade}
	_, err := svc.Credit(ctx, nil, op)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, nil, op)
	assert.ErrorIs(t, err, ErrDuplicateReference)
	assertAmount(t, "25.00", testutil.Balance(t, db, user.ID))
}

func TestWalletService_JoinedTransactionRollsBack(t *testing.T) {
	svc, db := newTestService(t)
	user := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	ctx := context.Background()

	boom := errors.New("settlement failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.Credit(ctx, tx, Operation{UserID: user.ID, Amount: amount("10"), Reference: "TX-1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assertAmount(t, "0.00", testutil.Balance(t, db, user.ID))

	var count int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWalletService_LockedWallet(t *testing.T) {
	svc, db := newTestService(t)
	user := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	ctx := context.Background()

	require.NoError(t, svc.Lock(ctx, user.ID, "chargeback investigation"))
	_, err := svc.Credit(ctx, nil, Operation{UserID: user.ID, Amount: amount("10"), Reference: "L-1"})
	assert.ErrorIs(t, err, ErrWalletLocked)

	entry, err := svc.AdminAdjust(ctx, 1, user.ID, AdjustRequest{Type: models.EntryCredit, Amount: amount("10"), Narration: "goodwill"})
	require.NoError(t, err)
	assert.Equal(t, models.SourceAdjustment, entry.Source)

	require.NoError(t, svc.Unlock(ctx, user.ID))
	w, err := svc.GetWallet(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WalletStatusActive, w.Status)
	assertAmount(t, "10.00", w.Balance)
}

func TestWalletService_Withdrawals(t *testing.T) {
	svc, db := newTestService(t)
	user := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	ctx := context.Background()
	testutil.SetBalance(t, db, user.ID, "10000")

	account, err := svc.AddBankAccount(ctx, user.ID, BankAccountRequest{
		BankName: "Test Bank", BankCode: "058", AccountNumber: "0123456789", AccountName: "Ada L",
	})
	require.NoError(t, err)

	req := WithdrawalRequest{BankAccountID: account.ID, Amount: amount("4000")}
	_, err = svc.RequestWithdrawal(ctx, user.ID, req)
	assert.ErrorIs(t, err, ErrKYCRequired)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("kyc_status", models.KYCVerified).Error)

	_, err = svc.RequestWithdrawal(ctx, user.ID, WithdrawalRequest{BankAccountID: account.ID, Amount: amount("999")})
	assert.ErrorIs(t, err, ErrBelowMinimum)

	_, err = svc.RequestWithdrawal(ctx, user.ID, WithdrawalRequest{BankAccountID: account.ID + 1, Amount: amount("4000")})
	assert.ErrorIs(t, err, ErrBankAccountNotFound)

	first, err := svc.RequestWithdrawal(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Regexp(t, `^WDR-\d+$`, first.Reference)
	assertAmount(t, "6000.00", testutil.Balance(t, db, user.ID))

	second, err := svc.RequestWithdrawal(ctx, user.ID, req)
	require.NoError(t, err)
	assertAmount(t, "2000.00", testutil.Balance(t, db, user.ID))

	_, err = svc.RequestWithdrawal(ctx, user.ID, req)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	done, err := svc.ReviewWithdrawal(ctx, 1, first.ID, ReviewWithdrawalRequest{Status: models.WithdrawalTransferred})
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalTransferred, done.Status)

	_, err = svc.ReviewWithdrawal(ctx, 1, second.ID, ReviewWithdrawalRequest{Status: models.WithdrawalDeclined})
	assert.ErrorIs(t, err, ErrNoteRequired)

	declined, err := svc.ReviewWithdrawal(ctx, 1, second.ID, ReviewWithdrawalRequest{Status: models.WithdrawalDeclined, Note: "name mismatch"})
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalDeclined, declined.Status)
	assertAmount(t, "6000.00", testutil.Balance(t, db, user.ID))

	_, err = svc.ReviewWithdrawal(ctx, 1, second.ID, ReviewWithdrawalRequest{Status: models.WithdrawalTransferred})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	items, total, err := svc.ListWithdrawals(ctx, pagination.NewQuery(map[string]string{"status": models.WithdrawalDeclined}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.NotNil(t, items[0].BankAccount)
	assert.Equal(t, "Test Bank", items[0].BankAccount.BankName)
}

func TestWalletService_BankAccountOwnership(t *testing.T) {
	svc, db := newTestService(t)
	ada := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	bob := testutil.CreateUser(t, db, "bob@example.com", "08010000002")
	ctx := context.Background()

	account, err := svc.AddBankAccount(ctx, ada.ID, BankAccountRequest{BankName: "B", BankCode: "1", AccountNumber: "123456", AccountName: "Ada"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteBankAccount(ctx, bob.ID, account.ID), ErrBankAccountNotFound)
	require.NoError(t, svc.DeleteBankAccount(ctx, ada.ID, account.ID))

	accounts, err := svc.ListBankAccounts(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "******6789", maskAccount("0123456789"))
	assert.Equal(t, "123", maskAccount("123"))
}
