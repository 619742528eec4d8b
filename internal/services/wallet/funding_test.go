package wallet

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"tradedesk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

type MockIntents struct {
	mock.Mock
}

func (m *MockIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(params)
	if pi, ok := args.Get(0).(*stripe.PaymentIntent); ok {
		return pi, args.Error(1)
	}
	return nil, args.Error(1)
}

const webhookSecret = "whsec_test"

func newFundingService(t *testing.T) (Service, *MockIntents, uint) {
	t.Helper()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com", "08010000001")
	intents := new(MockIntents)
	svc := NewService(Deps{DB: db, Intents: intents}, Config{Currency: "NGN", StripeWebhookSecret: webhookSecret})
	return svc, intents, user.ID
}

func intentEvent(t *testing.T, eventType, intentID string, amount int64) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"id": intentID, "object": "payment_intent", "amount": amount})
	require.NoError(t, err)
	return stripe.Event{ID: "evt_" + intentID, Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestStartFundingAndSucceededEvent(t *testing.T) {
	svc, intents, userID := newFundingService(t)
	ctx := context.Background()

	intents.On("New", mock.MatchedBy(func(p *stripe.PaymentIntentParams) bool {
		return *p.Amount == 250050 && *p.Currency == "ngn"
	})).Return(&stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()

	session, err := svc.StartFunding(ctx, userID, FundingRequest{Amount: amount("2500.50")})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", session.ClientSecret)
	intents.AssertExpectations(t)

	event := intentEvent(t, EventIntentSucceeded, "pi_1", 250050)
	require.NoError(t, svc.HandleEvent(ctx, event))
	require.NoError(t, svc.HandleEvent(ctx, event))

	w, err := svc.GetWallet(ctx, userID)
	require.NoError(t, err)
	assertAmount(t, "2500.50", w.Balance)
}

func TestFailedEventMarksIntent(t *testing.T) {
	svc, intents, userID := newFundingService(t)
	ctx := context.Background()

	intents.On("New", mock.Anything).Return(&stripe.PaymentIntent{ID: "pi_2"}, nil)
	_, err := svc.StartFunding(ctx, userID, FundingRequest{Amount: amount("100")})
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(ctx, intentEvent(t, EventIntentFailed, "pi_2", 10000)))
	require.NoError(t, svc.HandleEvent(ctx, intentEvent(t, EventIntentSucceeded, "pi_2", 10000)))

	w, err := svc.GetWallet(ctx, userID)
	require.NoError(t, err)
	assertAmount(t, "0.00", w.Balance)

	assert.ErrorIs(t, svc.HandleEvent(ctx, intentEvent(t, EventIntentSucceeded, "pi_unknown", 1)), ErrIntentNotFound)
	assert.NoError(t, svc.HandleEvent(ctx, stripe.Event{Type: "charge.refunded"}))
}

func TestHandleWebhookSignature(t *testing.T) {
	svc, intents, userID := newFundingService(t)
	ctx := context.Background()

	intents.On("New", mock.Anything).Return(&stripe.PaymentIntent{ID: "pi_3"}, nil)
	_, err := svc.StartFunding(ctx, userID, FundingRequest{Amount: amount("10")})
	require.NoError(t, err)

	payload := []byte(fmt.Sprintf(`{"id":"evt_3","object":"event","api_version":%q,"type":"payment_intent.succeeded","data":{"object":{"id":"pi_3","object":"payment_intent","amount":1000}}}`, stripe.APIVersion))
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	header := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))

	assert.ErrorIs(t, svc.HandleWebhook(ctx, payload, "t=1,v1=deadbeef"), ErrInvalidSignature)
	require.NoError(t, svc.HandleWebhook(ctx, payload, header))

	w, err := svc.GetWallet(ctx, userID)
	require.NoError(t, err)
	assertAmount(t, "10.00", w.Balance)
}

func TestStartFundingWithoutStripe(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(Deps{DB: db}, Config{})
	_, err := svc.StartFunding(context.Background(), 1, FundingRequest{Amount: amount("10")})
	assert.ErrorIs(t, err, ErrFundingUnavailable)
}
