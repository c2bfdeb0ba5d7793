package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/lbms-node/pkg/codec"
	"github.com/ZentaChain/lbms-node/pkg/crypto"
	"github.com/ZentaChain/lbms-node/pkg/dictionary"
	"github.com/ZentaChain/lbms-node/pkg/node"
	"github.com/ZentaChain/lbms-node/pkg/radio"
)

// errorStatus maps a send or radio error to an HTTP status and error code
func errorStatus(err error) (int, string) {
	var deviceErr *radio.DeviceError

	switch {
	case errors.Is(err, node.ErrEmptyMessage),
		errors.Is(err, node.ErrEncryptRequiresEncode):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, dictionary.ErrWordNotFound):
		return http.StatusBadRequest, "word_not_found"
	case errors.Is(err, crypto.ErrMessageExceedsBlockCapacity):
		return http.StatusBadRequest, "message_too_long"
	case errors.Is(err, crypto.ErrPadExhausted),
		errors.Is(err, crypto.ErrBlockAlreadyUsed):
		return http.StatusConflict, "pad_unavailable"
	case errors.Is(err, codec.ErrDictionaryNotLoaded):
		return http.StatusServiceUnavailable, "dictionary_not_loaded"
	case errors.Is(err, codec.ErrCryptoNotLoaded):
		return http.StatusServiceUnavailable, "crypto_not_loaded"
	case errors.Is(err, radio.ErrClosed),
		errors.Is(err, radio.ErrResponseTimeout),
		errors.As(err, &deviceErr):
		return http.StatusBadGateway, "radio_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondError(c *gin.Context, title string, err error) {
	status, code := errorStatus(err)
	c.JSON(status, ErrorResponse{
		Error:   title,
		Message: err.Error(),
		Code:    code,
	})
}
