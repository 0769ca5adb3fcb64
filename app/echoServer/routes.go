package echoServer

import (
	"github.com/labstack/echo/v4"

	"libreria/app/echoServer/controller/book"
	"libreria/app/echoServer/controller/reservation"
	"libreria/app/echoServer/controller/user"
)

type C struct {
	User        *user.Controller
	Book        *book.Controller
	Reservation *reservation.Controller
}

func Register(e *echo.Echo, c C) {
	api := e.Group("/api")

	// Users
	api.POST("/users", c.User.Create)
	api.GET("/users", c.User.List)
	api.GET("/users/:id", c.User.ByID)
	api.PUT("/users/:id", c.User.Update)
	api.DELETE("/users/:id", c.User.Delete)

	// Books
	api.POST("/books", c.Book.Create)
	api.GET("/books", c.Book.List)
	api.GET("/books/:externalId", c.Book.Detail)

	// Reservations
	api.POST("/reservations", c.Reservation.Create)
	api.GET("/reservations", c.Reservation.List)
	// Static segments before :id so echo does not shadow them.
	api.GET("/reservations/active", c.Reservation.Active)
	api.GET("/reservations/user/:userId", c.Reservation.ByUser)
	api.GET("/reservations/:id", c.Reservation.ByID)
	api.PUT("/reservations/:id/return", c.Reservation.Return)
}
