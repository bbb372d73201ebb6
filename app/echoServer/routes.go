package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Danny213123/cps714-group5/app/echoServer/controller/auth"
	"github.com/Danny213123/cps714-group5/app/echoServer/controller/download"
	"github.com/Danny213123/cps714-group5/app/echoServer/controller/item"
	"github.com/Danny213123/cps714-group5/app/echoServer/controller/loan"
)

type C struct {
	Auth     *auth.Controller
	Item     *item.Controller
	Loan     *loan.Controller
	Download *download.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/token", c.Auth.Mint)

	// Download path: the opaque access token is the only credential here,
	// no session or JWT is consulted.
	pub.GET("/downloads/:id", c.Download.Authorize)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id / role extraction
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenObj := ctx.Get("user")
			claims, ok := tokenObj.(jwt.MapClaims)
			if !ok {
				if tok, okTok := tokenObj.(*jwt.Token); okTok {
					claims, ok = tok.Claims.(jwt.MapClaims)
				}
			}
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", sub)
			if role, ok := claims["role"].(string); ok {
				ctx.Set("role", role)
			}
			return next(ctx)
		}
	})

	// Catalog
	authed.GET("/items", c.Item.List)
	authed.GET("/items/:id", c.Item.Detail)
	// Admin endpoints
	authed.POST("/items", c.Item.Create)
	authed.POST("/items/:id/copies", c.Item.AddCopies)

	// Lending
	authed.POST("/loans", c.Loan.Checkout)
	authed.POST("/loans/:id/return", c.Loan.Return)
	authed.POST("/loans/:id/renew", c.Loan.Renew)
	authed.GET("/loans/my", c.Loan.My)
	authed.POST("/loans/:id/revoke-access", c.Loan.RevokeAccess)
}
