package handlers

import (
	"errors"
	"strconv"

	"tradedesk/internal/repositories"
	"tradedesk/internal/services/alert"
	"tradedesk/internal/services/asset"
	"tradedesk/internal/services/auth"
	"tradedesk/internal/services/breakdown"
	"tradedesk/internal/services/giftcard"
	"tradedesk/internal/services/kyc"
	"tradedesk/internal/services/notification"
	"tradedesk/internal/services/rbac"
	"tradedesk/internal/services/user"
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"
	"tradedesk/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type statusRule struct {
	status int
	errs   []error
}

// Service errors checked in order; the first match decides the HTTP status.
var statusRules = []statusRule{
	{fiber.StatusNotFound, []error{
		repositories.ErrUserNotFound, repositories.ErrRoleNotFound,
		wallet.ErrWalletNotFound, wallet.ErrBankAccountNotFound, wallet.ErrWithdrawalNotFound, wallet.ErrIntentNotFound,
		giftcard.ErrCategoryNotFound, giftcard.ErrGiftcardNotFound, giftcard.ErrTradeNotFound,
		asset.ErrAssetNotFound, asset.ErrTradeNotFound,
		kyc.ErrVerificationNotFound, alert.ErrAlertNotFound, notification.ErrNotificationNotFound,
	}},
	{fiber.StatusConflict, []error{
		repositories.ErrEmailTaken, repositories.ErrPhoneTaken, repositories.ErrRoleExists,
		wallet.ErrDuplicateReference, wallet.ErrInvalidTransition,
		giftcard.ErrCategoryExists, giftcard.ErrCategoryInUse, giftcard.ErrInvalidTransition,
		asset.ErrAssetExists, asset.ErrInvalidTransition,
		kyc.ErrAlreadyVerified, kyc.ErrSubmissionPending, kyc.ErrInvalidTransition,
		alert.ErrNotPending, user.ErrAlreadyBlocked, user.ErrNotBlocked, auth.ErrMFAAlreadyEnabled,
	}},
	{fiber.StatusUnauthorized, []error{
		auth.ErrInvalidCredentials, auth.ErrInvalidToken, auth.ErrTokenRevoked,
	}},
	{fiber.StatusForbidden, []error{
		auth.ErrAccountBlocked, wallet.ErrWalletLocked, wallet.ErrKYCRequired,
		user.ErrSelfAction, rbac.ErrProtectedRole,
	}},
	{fiber.StatusBadRequest, []error{errInvalidBody, wallet.ErrInvalidSignature}},
	{fiber.StatusServiceUnavailable, []error{wallet.ErrFundingUnavailable}},
	{fiber.StatusUnprocessableEntity, []error{
		repositories.ErrPermissionUnknown,
		breakdown.ErrInvalidAmount, breakdown.ErrInvalidQuantity, breakdown.ErrInvalidRate,
		breakdown.ErrInvalidCharge, breakdown.ErrInvalidSide, breakdown.ErrNothingPayable,
		wallet.ErrInsufficientBalance, wallet.ErrInvalidAmount, wallet.ErrBelowMinimum, wallet.ErrNoteRequired,
		giftcard.ErrGiftcardInactive, giftcard.ErrAmountOutOfRange, giftcard.ErrInvalidLimits, giftcard.ErrInvalidCharge, giftcard.ErrCardsRequired,
		giftcard.ErrInvalidStatus, giftcard.ErrNoteRequired, giftcard.ErrInvalidReviewedAmount,
		asset.ErrAssetInactive, asset.ErrInvalidSide, asset.ErrAmountOutOfRange, asset.ErrInvalidLimits, asset.ErrInvalidCharge,
		asset.ErrAddressRequired, asset.ErrProofRequired, asset.ErrTxHashRequired, asset.ErrInvalidStatus,
		asset.ErrNoteRequired, asset.ErrInvalidReviewedAmount,
		kyc.ErrInvalidStatus, kyc.ErrReasonRequired,
		alert.ErrRecipientsRequired, alert.ErrInvalidAudience,
		auth.ErrInvalidReferralCode, auth.ErrInvalidMFACode, auth.ErrMFANotSetup, auth.ErrWrongPassword, auth.ErrSamePassword,
		user.ErrRolesRequired,
	}},
}

func statusFor(err error) int {
	for _, rule := range statusRules {
		for _, target := range rule.errs {
			if errors.Is(err, target) {
				return rule.status
			}
		}
	}
	return fiber.StatusInternalServerError
}

// fail writes the error response for a service error. Unknown errors are
// logged and hidden behind a generic message.
func fail(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		return utils.ValidationFailed(c, fields)
	}
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return utils.InternalError(c, "something went wrong")
	}
	return utils.Respond(c, status, fiber.Map{"error": err.Error()})
}

var errInvalidBody = errors.New("invalid request body")

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return validation.Validate(dst)
}

func paginated(c *fiber.Ctx, q pagination.Query, data interface{}, total int64) error {
	p := q.Pagination
	p.Total = total
	return utils.Success(c, pagination.Response(p, data))
}

func claimsID(c *fiber.Ctx) uint {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return 0
	}
	return claims.UserID
}

// userScoped pins a list query to the caller.
func userScoped(q pagination.Query, userID uint) pagination.Query {
	q.Filters["user_id"] = strconv.FormatUint(uint64(userID), 10)
	return q
}
