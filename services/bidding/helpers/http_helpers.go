package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-house/internal/biddingerrors"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, string(biddingerrors.KindValidation), wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message.
// Rejections keep their reason as the message so it can be shown to the user as is.
func MapErrorToHTTP(err error) (int, string) {
	var rejection *biddingerrors.Rejection
	if errors.As(err, &rejection) {
		return rejectionStatus(err, rejection.Kind()), rejection.Reason()
	}

	switch {
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, biddingerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusOK, "no bids found for auction"
	case errors.Is(err, biddingerrors.ErrUserNoBids):
		return http.StatusOK, "no auctions found for user"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func rejectionStatus(err error, kind biddingerrors.Kind) int {
	switch kind {
	case biddingerrors.KindValidation:
		// outbid or closed between the user's read and submit
		if errors.Is(err, biddingerrors.ErrBidTooLow) || errors.Is(err, biddingerrors.ErrAuctionNotActive) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case biddingerrors.KindConflict:
		return http.StatusConflict
	case biddingerrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func rejectionKind(err error) string {
	if !biddingerrors.IsRejection(err) {
		return ""
	}
	return string(biddingerrors.KindOf(err))
}

// RespondError writes the mapped error and logs it at a level matching its severity
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, rejectionKind(err), fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
