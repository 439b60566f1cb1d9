package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/handler"
	"github.com/iliyamo/cabin-reservation/internal/middleware"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.
// All routes require a valid JWT.  Read endpoints accept any staff
// role; mutations require SUPER_ADMIN or ADMIN.
func RegisterAdmin(e *echo.Echo,
	res *handler.AdminReservationHandler,
	cab *handler.AdminCabinHandler,
	pr *handler.AdminPricingHandler,
	cp *handler.AdminCouponHandler,
	jwtSecret string) {

	read := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("SUPER_ADMIN", "ADMIN", "VIEWER"),
	)
	write := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("SUPER_ADMIN", "ADMIN"),
	)

	// ---- Reservations ----
	read.GET("/reservations", res.List)
	read.GET("/reservations/stats", res.Stats)
	read.GET("/reservations/:id", res.Get)
	write.POST("/reservations/:id/confirm", res.Confirm)
	write.POST("/reservations/:id/cancel", res.Cancel)
	write.POST("/reservations/:id/verify-payment", res.VerifyPayment)
	write.POST("/reservations/:id/fail-payment", res.FailPayment)
	write.POST("/reservations/:id/complete", res.Complete)

	// ---- Cabins ----
	read.GET("/cabins", cab.List)
	read.GET("/cabins/:id/calendar", res.Calendar)
	write.POST("/cabins", cab.Create)
	write.PUT("/cabins/:id", cab.Update)
	write.PATCH("/cabins/:id/availability", cab.SetAvailability)
	write.DELETE("/cabins/:id", cab.Delete)

	// ---- Pricing ----
	read.GET("/cabins/:id/seasonal-prices", pr.ListSeasonal)
	write.POST("/cabins/:id/seasonal-prices", pr.CreateSeasonal)
	write.PUT("/seasonal-prices/:priceID", pr.UpdateSeasonal)
	write.DELETE("/seasonal-prices/:priceID", pr.DeleteSeasonal)
	read.GET("/cabins/:id/daily-prices", pr.ListDaily)
	write.PUT("/daily-prices", pr.UpsertDaily)
	write.DELETE("/daily-prices/:priceID", pr.DeleteDaily)

	// ---- Blocked dates ----
	read.GET("/blocked-dates", pr.ListBlocks)
	write.POST("/blocked-dates", pr.CreateBlock)
	write.DELETE("/blocked-dates/:blockID", pr.DeleteBlock)

	// ---- Coupons ----
	read.GET("/coupons", cp.List)
	write.POST("/coupons", cp.Create)
	write.PUT("/coupons/:couponID", cp.Update)
	write.DELETE("/coupons/:couponID", cp.Delete)
}
