package server

import (
	"context"
	"strings"
	"time"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "ripple-api"
	tokenAudience = "ripple-client"
	tokenLifetime = 24 * time.Hour
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles new account creation and returns a signed token so the
// client is logged in immediately.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "token generation failed", "error", err)
		return respondError(c, models.NewStoreError(err))
	}

	return c.Status(fiber.StatusOK).JSON(authResponse{Token: token, User: user})
}

// Login authenticates a user and returns a signed token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "token generation failed", "error", err)
		return respondError(c, models.NewStoreError(err))
	}

	return c.Status(fiber.StatusOK).JSON(authResponse{Token: token, User: user})
}

// GetCurrentUser returns the profile of the authenticated user.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	user, err := s.userService.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// Logout revokes the current token by blacklisting its jti until expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("tokenID").(string)
	exp, _ := c.Locals("tokenExpiry").(time.Time)

	if jti != "" && s.redis != nil {
		ttl := time.Until(exp)
		if ttl > 0 {
			if err := s.redis.Set(c.UserContext(), blacklistKey(jti), "revoked", ttl).Err(); err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "failed to blacklist token", "error", err)
			}
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
}

func blacklistKey(jti string) string {
	return "auth:blacklist:" + jti
}

func (s *Server) generateToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		Subject:   userID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// AuthRequired validates the bearer token and loads the user id into the
// request context.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			return respondError(c, models.NewUnauthenticatedError("Invalid or missing token"))
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.config.JWTSecret), nil
		}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience))
		if err != nil || !token.Valid {
			return respondError(c, models.NewUnauthenticatedError("Invalid or missing token"))
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return respondError(c, models.NewUnauthenticatedError("Invalid or missing token"))
		}

		if s.redis != nil && claims.ID != "" {
			revoked, err := s.redis.Exists(c.UserContext(), blacklistKey(claims.ID)).Result()
			if err == nil && revoked > 0 {
				return respondError(c, models.NewUnauthenticatedError("Invalid or missing token"))
			}
		}

		c.Locals("userID", userID)
		c.Locals("tokenID", claims.ID)
		if claims.ExpiresAt != nil {
			c.Locals("tokenExpiry", claims.ExpiresAt.Time)
		}

		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID.String())
		c.SetUserContext(ctx)

		return c.Next()
	}
}
