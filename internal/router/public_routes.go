package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/handler"
)

// RegisterPublic registers the unauthenticated guest-facing endpoints:
// cabin browsing, availability and price lookups, coupon validation and
// reservation creation.  No JWT or role middleware applies here; the
// per-route middlewares (rate limiting on writes, caching on reads) are
// passed in by the caller so they can be disabled when Redis is absent.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, bk *handler.BookingHandler,
	cacheMW echo.MiddlewareFunc, limitMW echo.MiddlewareFunc) {

	// Catalogue reads sit behind the response cache.
	e.GET("/v1/cabins", b.ListCabins, cacheMW)
	e.GET("/v1/cabins/:id", b.GetCabin, cacheMW)

	// Availability and quotes must always reflect the live calendar, so
	// they are rate limited but never cached.
	e.GET("/v1/cabins/:id/availability", bk.GetAvailability, limitMW)
	e.GET("/v1/cabins/:id/price", bk.GetQuote, limitMW)
	e.GET("/v1/cabins/:id/booked-dates", bk.GetBookedDates, limitMW)

	e.POST("/v1/coupons/validate", bk.ValidateCoupon, limitMW)
	e.POST("/v1/reservations", bk.CreateReservation, limitMW)
	// Guests check their booking status with the id they were handed.
	e.GET("/v1/reservations/:id", bk.GetReservation, limitMW)
}
