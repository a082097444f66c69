package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"event_ticketing/config"
	"event_ticketing/constants"
	"event_ticketing/utils"
)

// Protected authenticates the request from the auth service's bearer
// token and stores the caller's user id in Locals("userId"). Identity
// is issued elsewhere; this service only verifies it.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MsgUnauthorized, errors.New("no token"))
		}

		jwtToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(config.Config("JWT_SECRET")), nil
		})
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MsgUnauthorized, err)
		}

		claims, ok := jwtToken.Claims.(jwt.MapClaims)
		if !ok {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MsgUnauthorized, errors.New("malformed claims"))
		}
		userID, _ := claims["userId"].(string)
		if userID == "" {
			// some issuers put the user id in the standard subject
			userID, _ = claims["sub"].(string)
		}
		if userID == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MsgUnauthorized, errors.New("token carries no user id"))
		}

		c.Locals("userId", userID)
		return c.Next()
	}
}
