package http

import (
	stderrors "errors"
	"strings"

	"mongo-admin/internal/admin/config"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/shared/contextkeys"
	"mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/logger"
	"mongo-admin/internal/shared/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Locals keys shared between middleware, handlers and websocket connections.
const (
	RequestIDLocalKey = string(contextkeys.RequestIDKey)
	TenantLocalKey    = string(contextkeys.TenantIDKey)
	SubjectLocalKey   = string(contextkeys.SubjectKey)
)

// RequestIDMiddleware tags every request with a correlation id, honouring an
// inbound X-Request-ID.
func RequestIDMiddleware() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: RequestIDLocalKey,
	})
}

// TenantMiddleware resolves the tenant for the request and stores it on the
// user context. With a JWT secret configured the tenant comes from a verified
// bearer token claim; otherwise the tenant header set by the gateway is used.
func TenantMiddleware(cfg config.AuthConfig, log logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return func(c *fiber.Ctx) error {
		var tenantID, subject string
		if cfg.JWTEnabled() {
			claims, err := parseBearer(c, cfg.JWTSecret)
			if err != nil {
				log.Debugf("Rejected bearer token on %s: %v", c.Path(), err)
				return writeError(c, err)
			}
			tenantID, _ = claims[cfg.TenantClaim].(string)
			subject, _ = claims.GetSubject()
		} else {
			tenantID = fiberutils.CopyString(strings.TrimSpace(c.Get(cfg.TenantHeader)))
		}

		if tenantID == "" {
			return writeError(c, errors.NewMissingTenantError())
		}
		if err := namespace.ValidateTenantID(tenantID); err != nil {
			log.Warnf("Invalid tenant id on %s", c.Path())
			return writeError(c, err)
		}

		ctx := utils.WithTenantID(c.UserContext(), tenantID)
		if subject != "" {
			ctx = utils.WithSubject(ctx, subject)
		}
		if rid, ok := c.Locals(RequestIDLocalKey).(string); ok && rid != "" {
			ctx = utils.WithRequestID(ctx, fiberutils.CopyString(rid))
		}
		c.SetUserContext(ctx)
		c.Locals(TenantLocalKey, tenantID)
		c.Locals(SubjectLocalKey, subject)
		return c.Next()
	}
}

// parseBearer validates an HMAC-signed token from the Authorization header.
// Browsers cannot set headers on a websocket handshake, so upgrades may carry
// the token in the access_token query parameter instead.
func parseBearer(c *fiber.Ctx, secret string) (jwt.MapClaims, error) {
	token := ""
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if token == "" && websocket.IsWebSocketUpgrade(c) {
		token = c.Query("access_token")
	}
	if token == "" {
		return nil, errors.NewMissingTenantError()
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case stderrors.Is(err, jwt.ErrTokenExpired):
			return nil, errors.NewAuthenticationError("token expired").WithCause(err)
		case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errors.NewAuthenticationError("invalid token signature").WithCause(err)
		default:
			return nil, errors.NewAuthenticationError("invalid token").WithCause(err)
		}
	}
	if !parsed.Valid {
		return nil, errors.NewAuthenticationError("invalid token")
	}
	return claims, nil
}
