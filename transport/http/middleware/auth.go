package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinicbook/infras/jwt"
	"clinicbook/infras/otel"
	"clinicbook/permissions"
	"clinicbook/shared/constant"
	"clinicbook/shared/failure"
	"clinicbook/transport/http/response"
)

// Auth verifies bearer tokens minted by the external auth service and injects
// the caller identity into the request context.
type Auth interface {
	Auth(http.Handler) http.Handler
}

type authImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
}

func NewAuthMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData) Auth {
	return &authImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
	}
}

func (m *authImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		if m.skips(ctx, request) {
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
		})

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == "" {
			err := failure.Unauthorized("Missing authorization header")
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			err := failure.Unauthorized("Invalid authorization header format")
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				message = "Token has expired"
			}

			err := failure.Unauthorized(message)
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		if claims.UserID == "" {
			err := failure.Unauthorized("Invalid token claims")
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// skips reports whether the matched route is marked skip in the embedded
// permissions config (health, swagger).
func (m *authImpl) skips(ctx context.Context, request *http.Request) bool {
	if m.permission == nil {
		return false
	}

	if m.permission.Skip {
		return true
	}

	rctx := chi.RouteContext(ctx)
	if rctx == nil {
		return false
	}

	path := rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)

	return m.permission.FindPermissions(path, request.Method).Skip
}
