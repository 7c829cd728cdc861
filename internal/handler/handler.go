package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cinecity-client/internal/middleware"
	"cinecity-client/internal/model"
	"cinecity-client/internal/service"
	"cinecity-client/internal/view"
	"cinecity-client/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const defaultRequestTimeout = 30 * time.Second

// LoginPath is where an expired browser session is sent
const LoginPath = "/login"

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
}

// apiFor binds the domain modules to the request's cookie session
func apiFor(client *httpclient.Client, c *gin.Context) *service.API {
	return service.New(client, middleware.SessionFrom(c))
}

func replyExpired(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, model.APIResponse{
		Code:     http.StatusUnauthorized,
		Error:    "Session expired. Please log in again.",
		Redirect: LoginPath,
	})
}

// replyError answers with the banner of err and a status derived from it
func replyError(c *gin.Context, err error) {
	banner := view.Classify(err)
	if middleware.Expired(c) || banner.Kind == view.KindUnauthorized {
		replyExpired(c)
		return
	}
	status := statusOf(err)
	c.JSON(status, model.APIResponse{
		Code:  status,
		Error: banner.Message,
	})
}

// statusOf keeps upstream 4xx codes; everything else is the backend's fault
func statusOf(err error) int {
	var verrs validator.ValidationErrors
	switch code := httpclient.StatusCode(err); {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case code >= 400 && code < 500:
		return code
	default:
		return http.StatusBadGateway
	}
}

func replyOK(c *gin.Context, status int, data interface{}) {
	c.Set(middleware.SourceKey, model.SourceFresh)
	c.JSON(status, model.APIResponse{
		Code:   status,
		Data:   data,
		Source: model.SourceFresh,
	})
}
