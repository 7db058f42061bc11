package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/menusync-backend/internal/domain/catalog"
)

// StatusFor maps a catalog error code to an HTTP status.
func StatusFor(err error) int {
	switch catalog.CodeOf(err) {
	case catalog.CodeNotFound:
		return http.StatusNotFound
	case catalog.CodeConstraintViolation:
		return http.StatusConflict
	case catalog.CodeSyncError:
		return http.StatusServiceUnavailable
	case catalog.CodeParseError:
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// RespondCatalogError writes err with the status its code maps to. Catalog
// errors expose their message only, never the wrapped cause.
func RespondCatalogError(c *gin.Context, err error) {
	status := StatusFor(err)
	code := string(catalog.CodeOf(err))
	if code == "" {
		code = string(catalog.CodeInternal)
	}

	msg := "internal error"
	var catErr *catalog.Error
	if errors.As(err, &catErr) && catErr.Code != catalog.CodeInternal {
		msg = catErr.Message
	}
	if status == http.StatusServiceUnavailable && catErr != nil && catErr.Committed {
		c.Header("X-Store-Committed", "true")
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}
