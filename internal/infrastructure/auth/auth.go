package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/utils/platformerrors"
)

const principalContextKey = "authPrincipal"

// Claims carried by the access token. A missing tenant_id marks a
// global-scope principal.
type Claims struct {
	Role     string  `json:"role"`
	TenantID *string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Validator parses and verifies HS256 bearer tokens.
type Validator struct {
	secret []byte
	log    zerolog.Logger
}

func NewValidator(cfg *config.Config, log zerolog.Logger) *Validator {
	return &Validator{
		secret: []byte(cfg.JWTSecret),
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// Parse verifies the token signature and maps its claims to a principal.
func (v *Validator) Parse(token string) (asset.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return asset.Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return asset.Principal{}, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return asset.Principal{}, fmt.Errorf("token has no subject")
	}

	role, err := parseRole(claims.Role)
	if err != nil {
		return asset.Principal{}, err
	}

	tenantID := claims.TenantID
	if tenantID != nil && strings.TrimSpace(*tenantID) == "" {
		tenantID = nil
	}

	return asset.Principal{
		UserID:   claims.Subject,
		Role:     role,
		TenantID: tenantID,
	}, nil
}

func parseRole(raw string) (asset.Role, error) {
	switch asset.Role(strings.TrimSpace(raw)) {
	case asset.RoleAdmin:
		return asset.RoleAdmin, nil
	case asset.RoleEditor:
		return asset.RoleEditor, nil
	case asset.RoleViewer, "":
		return asset.RoleViewer, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Middleware authenticates the request and stores the principal in the
// gin context for downstream handlers.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token", nil, "2f8b1d6a-9c43-4e07-b5a2-d1e84f7c0369")
			return
		}

		principal, err := v.Parse(token)
		if err != nil {
			v.log.Debug().Err(err).Msg("token rejected")
			abortUnauthorized(c, "invalid bearer token", err, "7a4c2e91-0b5d-4f68-8c3a-e6d9b1f72054")
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// RequireRoles rejects principals whose role is not in the allowed set.
func RequireRoles(roles ...asset.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			abortUnauthorized(c, "missing authentication", nil, "c1d5a837-4e92-40fb-b06c-8f3e7a2d9514")
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		err := platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeForbidden,
			"insufficient role for this operation", nil, "9e6b3f12-8a05-47dc-91e4-5c2d0b7f8a63")
		c.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(platformerrors.ErrorTypeForbidden), gin.H{"error": err.Message, "code": err.GetUUID()})
	}
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *gin.Context) (asset.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return asset.Principal{}, false
	}
	principal, ok := value.(asset.Principal)
	return principal, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		// Browsers cannot set headers on websocket dials; allow the
		// token as a query parameter for the events endpoint.
		return strings.TrimSpace(c.Query("token"))
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, msg string, cause error, uuid string) {
	err := platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeUnauthorized,
		msg, cause, uuid)
	c.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(platformerrors.ErrorTypeUnauthorized), gin.H{"error": err.Message, "code": err.GetUUID()})
}
