// Package main digital lending API.
//
// @title           Digital Library Lending API
// @version         1.0
// @description     time-limited lending of e-books and audiobooks with token-gated downloads.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Danny213123/cps714-group5/app/echoServer"
	authctrl "github.com/Danny213123/cps714-group5/app/echoServer/controller/auth"
	downloadctrl "github.com/Danny213123/cps714-group5/app/echoServer/controller/download"
	itemctrl "github.com/Danny213123/cps714-group5/app/echoServer/controller/item"
	loanctrl "github.com/Danny213123/cps714-group5/app/echoServer/controller/loan"
	"github.com/Danny213123/cps714-group5/app/echoServer/validation"
	"github.com/Danny213123/cps714-group5/config"
	catalogrepo "github.com/Danny213123/cps714-group5/repository/catalog"
	"github.com/Danny213123/cps714-group5/repository/ledger"
	accesssvc "github.com/Danny213123/cps714-group5/service/access"
	catalogsvc "github.com/Danny213123/cps714-group5/service/catalog"
	lendingsvc "github.com/Danny213123/cps714-group5/service/lending"
	"github.com/Danny213123/cps714-group5/service/policy"
	tokensvc "github.com/Danny213123/cps714-group5/service/token"
)

func main() {

	cfg := config.Load()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// stores
	catalog := catalogrepo.New()
	loans := ledger.New()

	// services
	tokens := tokensvc.New()
	rules := policy.FromConfig(cfg)
	lending := lendingsvc.New(loans, catalog, rules, tokens, log)
	lending.Start()
	defer lending.Stop()

	access := accesssvc.New(lending, tokens, time.Duration(cfg.TokenTTLHours)*time.Hour, log)
	items := catalogsvc.New(catalog)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{JWTSecret: cfg.JWTSecret, Env: cfg.Env, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: items, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: lending, Access: access, V: v, Log: log}
	downloadC := &downloadctrl.Controller{Loans: lending, Access: access, Catalog: items, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Item:     itemC,
		Loan:     loanC,
		Download: downloadC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
