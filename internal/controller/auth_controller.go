package controller

import (
	"clipboard-api-be/internal/dto"
	"clipboard-api-be/internal/pkg/serverutils"
	"clipboard-api-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Token(ctx *fiber.Ctx) error
	User(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	authService service.IAuthService
}

func NewAuthController(authService service.IAuthService) IAuthController {
	return &authController{authService: authService}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Get("login", c.Login)
	h.Post("token", c.Token)
	h.Get("user", serverutils.RequireAuth(c.authService), c.User)
	h.Post("logout", serverutils.RequireAuth(c.authService), c.Logout)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	res, err := c.authService.BuildLoginURL(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success build login url", res))
}

func (c *authController) Token(ctx *fiber.Ctx) error {
	var req dto.TokenExchangeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewHttpError(fiber.StatusBadRequest, "Invalid request body.")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authService.Exchange(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success exchange token", res))
}

func (c *authController) User(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)
	return ctx.JSON(serverutils.SuccessResponse("Success get user", dto.NewUserResponse(user)))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	res, err := c.authService.Logout(ctx.Context(), serverutils.CurrentToken(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success logout", res))
}
