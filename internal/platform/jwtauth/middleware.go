package jwtauth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const claimsContextKey = "jwtauth.claims"

// EchoMiddleware validates the bearer token on every request and stores the
// resulting Claims on the echo context (see ClaimsFromEcho), gating the protected route
// group ahead of it — wired through echo-jwt's extraction/error-handling
// plumbing, with ParseTokenFunc delegating to Service.Validate so the
// HS256 signature, issuer, and audience checks stay in one place.
func (s *Service) EchoMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ",
		ContextKey:  claimsContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return s.Validate(c.Request().Context(), auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		},
	})
}

// ClaimsFromEcho returns the Claims stashed by EchoMiddleware, if any.
func ClaimsFromEcho(c echo.Context) (Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(Claims)
	return claims, ok
}
