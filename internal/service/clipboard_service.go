package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"clipboard-api-be/internal/dto"
	"clipboard-api-be/internal/entity"
	"clipboard-api-be/internal/pkg/mailer"
	"clipboard-api-be/internal/pkg/serverutils"
	"clipboard-api-be/internal/repository/specification"
	"clipboard-api-be/internal/repository/unitofwork"
	"clipboard-api-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	codeLength  = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// How many random codes we try before giving up on a unique one.
	maxCodeAttempts = 10
)

type IClipboardService interface {
	Create(ctx context.Context, caller *entity.User, req *dto.CreateClipboardRequest) (*dto.ClipboardResponse, error)
	Show(ctx context.Context, caller *entity.User, code string) (*dto.ClipboardResponse, error)
	List(ctx context.Context, caller *entity.User, skip, limit int) ([]*dto.ClipboardResponse, error)
	Update(ctx context.Context, caller *entity.User, req *dto.UpdateClipboardRequest) (*dto.ClipboardResponse, error)
	Delete(ctx context.Context, caller *entity.User, code string) error
	Share(ctx context.Context, caller *entity.User, req *dto.ShareClipboardRequest) error
	// SweepExpired removes every past-expiry record. Run by the cleanup job.
	SweepExpired(ctx context.Context) (int64, error)
}

type clipboardService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	emailService     mailer.IEmailService
	clientURL        string
}

func NewClipboardService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	emailService mailer.IEmailService,
	clientURL string,
) IClipboardService {
	return &clipboardService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		emailService:     emailService,
		clientURL:        clientURL,
	}
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		buf[i] = codeCharset[n.Int64()]
	}
	return string(buf), nil
}

// resolveOwner maps the requested owner identity to the caller's subject.
// Callers may name themselves by subject or email, nothing else.
func resolveOwner(caller *entity.User, requested string) (*string, error) {
	if caller == nil {
		return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Authentication required to create a private clipboard.")
	}
	if requested != caller.Subject && (caller.Email == "" || requested != caller.Email) {
		return nil, serverutils.NewHttpError(fiber.StatusForbidden, "Cannot assign clipboard to a different user.")
	}
	subject := caller.Subject
	return &subject, nil
}

func actorOf(caller *entity.User) string {
	if caller == nil {
		return ""
	}
	return caller.Subject
}

func toClipboardResponse(c *entity.Clipboard) *dto.ClipboardResponse {
	return &dto.ClipboardResponse{
		Id:            c.Id,
		Code:          c.Code,
		Content:       c.Content,
		IsEncrypted:   c.IsEncrypted,
		EncryptionKey: c.EncryptionKey,
		User:          c.OwnerId,
		IsPublic:      c.IsPublic,
		ExpiresAt:     c.ExpiresAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (s *clipboardService) Create(ctx context.Context, caller *entity.User, req *dto.CreateClipboardRequest) (*dto.ClipboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var ownerId *string
	if req.User != nil && *req.User != "" {
		resolved, err := resolveOwner(caller, *req.User)
		if err != nil {
			return nil, err
		}
		ownerId = resolved
	}

	if req.ExpiresAt == nil && caller == nil {
		return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Authentication required to create a permanent clipboard.")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}

		clip := entity.Clipboard{
			Id:            uuid.New(),
			Code:          code,
			Content:       req.Content,
			IsEncrypted:   req.IsEncrypted,
			EncryptionKey: req.EncryptionKey,
			OwnerId:       ownerId,
			IsPublic:      req.IsPublic,
			ExpiresAt:     req.ExpiresAt,
			CreatedAt:     time.Now(),
		}

		err = uow.ClipboardRepository().Create(ctx, &clip)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publisherService.PublishEvent(ctx, events.ClipboardCreated, map[string]interface{}{
			"code":      clip.Code,
			"actor":     actorOf(caller),
			"is_public": clip.IsPublic,
		})

		return toClipboardResponse(&clip), nil
	}

	return nil, serverutils.NewHttpError(fiber.StatusInternalServerError, "Failed to generate unique clipboard code.")
}

func (s *clipboardService) findByCode(ctx context.Context, uow unitofwork.UnitOfWork, code string) (*entity.Clipboard, error) {
	clip, err := uow.ClipboardRepository().FindOne(ctx, specification.ByCode{Code: code})
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, serverutils.NewHttpErrorf(fiber.StatusNotFound, "Clipboard %s is not found.", code)
	}
	return clip, nil
}

func (s *clipboardService) Show(ctx context.Context, caller *entity.User, code string) (*dto.ClipboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	clip, err := s.findByCode(ctx, uow, code)
	if err != nil {
		return nil, err
	}

	if clip.Expired(time.Now()) {
		// Reads lazily collect what the sweeper has not gotten to yet.
		if err := uow.ClipboardRepository().Delete(ctx, clip.Id); err != nil {
			return nil, err
		}
		s.publisherService.PublishEvent(ctx, events.ClipboardExpired, map[string]interface{}{
			"code":      clip.Code,
			"is_public": clip.IsPublic,
		})
		return nil, serverutils.NewHttpError(fiber.StatusGone, "Clipboard has expired.")
	}

	if clip.OwnerId != nil && !clip.IsPublic {
		if caller == nil || !clip.OwnedBy(caller.Subject) {
			return nil, serverutils.NewHttpError(fiber.StatusForbidden, "Clipboard is private.")
		}
	}

	return toClipboardResponse(clip), nil
}

func (s *clipboardService) List(ctx context.Context, caller *entity.User, skip, limit int) ([]*dto.ClipboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subject := ""
	if caller != nil {
		subject = caller.Subject
	}

	clips, err := uow.ClipboardRepository().FindAll(ctx,
		specification.VisibleTo{Subject: subject},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: skip},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ClipboardResponse, len(clips))
	for i, clip := range clips {
		res[i] = toClipboardResponse(clip)
	}
	return res, nil
}

func (s *clipboardService) Update(ctx context.Context, caller *entity.User, req *dto.UpdateClipboardRequest) (*dto.ClipboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	clip, err := s.findByCode(ctx, uow, req.Code)
	if err != nil {
		return nil, err
	}

	if clip.OwnerId != nil {
		if caller == nil || !clip.OwnedBy(caller.Subject) {
			return nil, serverutils.NewHttpError(fiber.StatusForbidden, "Not authorized to modify this clipboard.")
		}
	}

	if req.User != nil {
		if *req.User == "" {
			clip.OwnerId = nil
		} else {
			if caller == nil {
				return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Authentication required to set clipboard ownership.")
			}
			resolved, err := resolveOwner(caller, *req.User)
			if err != nil {
				return nil, err
			}
			clip.OwnerId = resolved
		}
	}

	if req.IsPublic != nil {
		// Only the owner may flip visibility; ownerless records have no
		// owner to protect.
		if clip.OwnerId != nil && (caller == nil || !clip.OwnedBy(caller.Subject)) {
			return nil, serverutils.NewHttpError(fiber.StatusForbidden, "Only the owner can change visibility.")
		}
		clip.IsPublic = *req.IsPublic
	}

	if req.Content != nil {
		clip.Content = *req.Content
	}
	if req.ExpiresAt != nil {
		clip.ExpiresAt = req.ExpiresAt
	}
	if req.IsEncrypted != nil {
		clip.IsEncrypted = *req.IsEncrypted
	}
	if req.EncryptionKey != nil {
		clip.EncryptionKey = req.EncryptionKey
	}

	now := time.Now()
	clip.UpdatedAt = &now

	if err := uow.ClipboardRepository().Update(ctx, clip); err != nil {
		return nil, err
	}

	s.publisherService.PublishEvent(ctx, events.ClipboardUpdated, map[string]interface{}{
		"code":      clip.Code,
		"actor":     actorOf(caller),
		"is_public": clip.IsPublic,
	})

	return toClipboardResponse(clip), nil
}

func (s *clipboardService) Delete(ctx context.Context, caller *entity.User, code string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	clip, err := s.findByCode(ctx, uow, code)
	if err != nil {
		return err
	}

	if clip.OwnerId != nil {
		if caller == nil || !clip.OwnedBy(caller.Subject) {
			return serverutils.NewHttpError(fiber.StatusForbidden, "Not authorized to delete this clipboard.")
		}
	}

	if err := uow.ClipboardRepository().Delete(ctx, clip.Id); err != nil {
		return err
	}

	s.publisherService.PublishEvent(ctx, events.ClipboardDeleted, map[string]interface{}{
		"code":      clip.Code,
		"actor":     actorOf(caller),
		"is_public": clip.IsPublic,
	})

	return nil
}

func (s *clipboardService) Share(ctx context.Context, caller *entity.User, req *dto.ShareClipboardRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	clip, err := s.findByCode(ctx, uow, req.Code)
	if err != nil {
		return err
	}

	if clip.Expired(time.Now()) {
		return serverutils.NewHttpError(fiber.StatusGone, "Clipboard has expired.")
	}

	// Same visibility rule as reading: you can only share what you can see.
	if clip.OwnerId != nil && !clip.IsPublic && !clip.OwnedBy(caller.Subject) {
		return serverutils.NewHttpError(fiber.StatusForbidden, "Clipboard is private.")
	}

	senderName := caller.Username
	if senderName == "" {
		senderName = caller.Email
	}
	if senderName == "" {
		senderName = "Someone"
	}

	link := fmt.Sprintf("%s/clip/%s", s.clientURL, clip.Code)
	if err := s.emailService.SendShareLink(req.Email, clip.Code, link, senderName); err != nil {
		return serverutils.NewHttpError(fiber.StatusBadGateway, "Unable to send share email.")
	}

	s.publisherService.PublishEvent(ctx, events.ClipboardShared, map[string]interface{}{
		"code":      clip.Code,
		"actor":     caller.Subject,
		"recipient": req.Email,
		"is_public": clip.IsPublic,
	})

	return nil
}

func (s *clipboardService) SweepExpired(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	removed, err := uow.ClipboardRepository().DeleteExpired(ctx, specification.ExpiredBefore{Now: time.Now()})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.publisherService.PublishEvent(ctx, events.ClipboardExpired, map[string]interface{}{
			"removed": removed,
		})
	}

	return removed, nil
}
