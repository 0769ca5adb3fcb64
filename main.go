// Package main library reservation API.
//
// @title           Librería API
// @version         1.0
// @description     Book reservation service (users, books, reservations).
// @BasePath        /
// @schemes         http
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libreria/app/echoServer"
	bookctrl "libreria/app/echoServer/controller/book"
	reservationctrl "libreria/app/echoServer/controller/reservation"
	userctrl "libreria/app/echoServer/controller/user"
	"libreria/app/echoServer/validation"
	"libreria/config"
	bookrepo "libreria/repository/book"
	reservationrepo "libreria/repository/reservation"
	userrepo "libreria/repository/user"
	booksvc "libreria/service/book"
	reservationsvc "libreria/service/reservation"
	usersvc "libreria/service/user"
	"libreria/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := reservationrepo.New(db)

	// services
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	rsvc := reservationsvc.New(ur, br, rr)
	scanner := reservationsvc.NewScanner(rr)

	// controllers
	v := validator.New()
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rsvc, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		User:        userC,
		Book:        bookC,
		Reservation: reservationC,
	})

	// background overdue scan
	go runOverdueScan(ctx, scanner, cfg.OverdueScan, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}

func runOverdueScan(ctx context.Context, s reservationsvc.Scanner, every time.Duration, log *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		n, err := s.ScanOverdue(ctx)
		if err != nil {
			log.Error("overdue scan failed", "err", err)
		} else if n > 0 {
			log.Info("overdue scan", "reclassified", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
