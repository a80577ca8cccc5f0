package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse represents the standard error response format.
type HTTPErrorResponse struct {
	Error *HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail contains error details for HTTP responses.
type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteHTTPError writes a PlatformError as an HTTP response, mapping the
// error type to a status code.
func WriteHTTPError(c *gin.Context, err *PlatformError, log zerolog.Logger) {
	if err == nil {
		c.JSON(http.StatusInternalServerError, HTTPErrorResponse{
			Error: &HTTPErrorDetail{
				Message: "unknown error",
				Type:    "internal_error",
			},
		})
		return
	}

	LogError(log, err)

	status := ErrorTypeToHTTPStatus(err.Type)
	c.JSON(status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   err.Message,
			Type:      string(err.Type),
			Code:      err.Code,
			RequestID: err.RequestID,
		},
	})
}

// WriteError writes a generic error as an HTTP response. PlatformErrors keep
// their classification; anything else is treated as internal.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	if err == nil {
		c.JSON(http.StatusInternalServerError, HTTPErrorResponse{
			Error: &HTTPErrorDetail{
				Message: "unknown error",
				Type:    "internal_error",
			},
		})
		return
	}

	if platformErr := GetPlatformError(err); platformErr != nil {
		WriteHTTPError(c, platformErr, log)
		return
	}

	log.Error().Err(err).Msg("unclassified error")
	c.JSON(http.StatusInternalServerError, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message: err.Error(),
			Type:    "internal_error",
		},
	})
}

// LogError logs a PlatformError with its structured fields.
func LogError(log zerolog.Logger, err *PlatformError) {
	event := log.Error().
		Str("layer", string(err.Layer)).
		Str("error_type", string(err.Type)).
		Str("code", err.Code)
	if err.RequestID != "" {
		event = event.Str("request_id", err.RequestID)
	}
	if err.Err != nil {
		event = event.Err(err.Err)
	}
	event.Msg(err.Message)
}
