package middleware

// identity.go provides the user identity lookup shared by the keyed
// middlewares. JWTAuth stores the token's subject under "user_id"; the
// rate limiter uses it so authenticated staff are throttled per account
// rather than per source address.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID returns the authenticated user's identifier from the context.
// The subject claim survives JSON decoding as a float64, so both string
// and numeric forms are handled. Unauthenticated requests get "guest".
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    }
    return "guest"
}
