package controller

import (
	"clipboard-api-be/internal/dto"
	"clipboard-api-be/internal/pkg/logger"
	"clipboard-api-be/internal/pkg/serverutils"
	"clipboard-api-be/internal/service"
	internalWS "clipboard-api-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IClipboardController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
	ServeFeed(ctx *fiber.Ctx) error
}

type clipboardController struct {
	clipboardService service.IClipboardService
	authService      service.IAuthService
	feedHub          *internalWS.Hub
	logger           logger.ILogger
}

func NewClipboardController(
	clipboardService service.IClipboardService,
	authService service.IAuthService,
	feedHub *internalWS.Hub,
	log logger.ILogger,
) IClipboardController {
	return &clipboardController{
		clipboardService: clipboardService,
		authService:      authService,
		feedHub:          feedHub,
		logger:           log,
	}
}

func (c *clipboardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/clipboard/v1")
	// The feed is public and must not go through the auth middleware.
	h.Get("feed", c.ServeFeed)

	h.Use(serverutils.OptionalAuth(c.authService))
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":code", c.Show)
	h.Put(":code", c.Update)
	h.Delete(":code", c.Delete)
	h.Post(":code/share", serverutils.RequireAuth(c.authService), c.Share)
}

func (c *clipboardController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateClipboardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewHttpError(fiber.StatusBadRequest, "Invalid request body.")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.clipboardService.Create(ctx.Context(), serverutils.CurrentUser(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create clipboard", res))
}

func (c *clipboardController) Show(ctx *fiber.Ctx) error {
	code := ctx.Params("code")

	res, err := c.clipboardService.Show(ctx.Context(), serverutils.CurrentUser(ctx), code)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show clipboard", res))
}

func (c *clipboardController) List(ctx *fiber.Ctx) error {
	skip := ctx.QueryInt("skip", 0)
	limit := ctx.QueryInt("limit", 100)

	res, err := c.clipboardService.List(ctx.Context(), serverutils.CurrentUser(ctx), skip, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list clipboards", res))
}

func (c *clipboardController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateClipboardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewHttpError(fiber.StatusBadRequest, "Invalid request body.")
	}
	req.Code = ctx.Params("code")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.clipboardService.Update(ctx.Context(), serverutils.CurrentUser(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update clipboard", res))
}

func (c *clipboardController) Delete(ctx *fiber.Ctx) error {
	code := ctx.Params("code")

	if err := c.clipboardService.Delete(ctx.Context(), serverutils.CurrentUser(ctx), code); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *clipboardController) Share(ctx *fiber.Ctx) error {
	var req dto.ShareClipboardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewHttpError(fiber.StatusBadRequest, "Invalid request body.")
	}
	req.Code = ctx.Params("code")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.clipboardService.Share(ctx.Context(), serverutils.CurrentUser(ctx), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success share clipboard", nil))
}

// ServeFeed upgrades the connection and attaches it to the public feed hub.
func (c *clipboardController) ServeFeed(ctx *fiber.Ctx) error {
	if c.feedHub == nil {
		return serverutils.NewHttpError(fiber.StatusServiceUnavailable, "Feed is not available.")
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ClipboardController", "Feed session started", nil)
			internalWS.ServeWs(c.feedHub, conn)
			c.logger.Info("ClipboardController", "Feed session ended", nil)
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
