package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"clipboard-api-be/internal/dto"
	"clipboard-api-be/internal/entity"
	"clipboard-api-be/internal/model"
	"clipboard-api-be/internal/pkg/serverutils"
	"clipboard-api-be/internal/repository/contract"
	"clipboard-api-be/internal/repository/specification"
	"clipboard-api-be/internal/repository/unitofwork"
	"clipboard-api-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---- Fakes ----

type fakeClipboardRepo struct {
	byCode map[string]*entity.Clipboard
	// Pre-seeded codes that collide on Create. Consumed one per attempt.
	collisions int
	createErr  error
}

func newFakeClipboardRepo() *fakeClipboardRepo {
	return &fakeClipboardRepo{byCode: map[string]*entity.Clipboard{}}
}

func (r *fakeClipboardRepo) Create(_ context.Context, clip *entity.Clipboard) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.collisions > 0 {
		r.collisions--
		return gorm.ErrDuplicatedKey
	}
	if _, ok := r.byCode[clip.Code]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *clip
	r.byCode[clip.Code] = &cp
	return nil
}

func (r *fakeClipboardRepo) Update(_ context.Context, clip *entity.Clipboard) error {
	cp := *clip
	r.byCode[clip.Code] = &cp
	return nil
}

func (r *fakeClipboardRepo) Delete(_ context.Context, id uuid.UUID) error {
	for code, clip := range r.byCode {
		if clip.Id == id {
			delete(r.byCode, code)
			return nil
		}
	}
	return nil
}

func (r *fakeClipboardRepo) DeleteExpired(_ context.Context, specs ...specification.Specification) (int64, error) {
	now := time.Now()
	for _, spec := range specs {
		if exp, ok := spec.(specification.ExpiredBefore); ok {
			now = exp.Now
		}
	}
	var removed int64
	for code, clip := range r.byCode {
		if clip.Expired(now) {
			delete(r.byCode, code)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeClipboardRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Clipboard, error) {
	for _, spec := range specs {
		if byCode, ok := spec.(specification.ByCode); ok {
			if clip, found := r.byCode[byCode.Code]; found {
				cp := *clip
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeClipboardRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Clipboard, error) {
	subject := ""
	limit, offset := -1, 0
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.VisibleTo:
			subject = s.Subject
		case specification.Pagination:
			limit, offset = s.Limit, s.Offset
		}
	}

	var out []*entity.Clipboard
	for _, clip := range r.byCode {
		if clip.IsPublic || (subject != "" && clip.OwnedBy(subject)) {
			cp := *clip
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeClipboardRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.byCode)), nil
}

type fakeUserRepo struct {
	bySubject map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{bySubject: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.bySubject[u.Subject] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	cp := *u
	r.bySubject[u.Subject] = &cp
	return nil
}

func (r *fakeUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, spec := range specs {
		if bySubject, ok := spec.(specification.BySubject); ok {
			if u, found := r.bySubject[bySubject.Subject]; found {
				cp := *u
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.bySubject)), nil
}

type fakeAuditLogRepo struct {
	logs []*model.AuditLog
}

func (r *fakeAuditLogRepo) Create(_ context.Context, log *model.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditLogRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.logs)), nil
}

type fakeUnitOfWork struct {
	clipboards *fakeClipboardRepo
	users      *fakeUserRepo
	auditLogs  *fakeAuditLogRepo
}

func (u *fakeUnitOfWork) Begin(_ context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                 { return nil }
func (u *fakeUnitOfWork) Rollback() error               { return nil }

func (u *fakeUnitOfWork) ClipboardRepository() contract.ClipboardRepository { return u.clipboards }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository           { return u.users }
func (u *fakeUnitOfWork) AuditLogRepository() contract.AuditLogRepository   { return u.auditLogs }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{uow: &fakeUnitOfWork{
		clipboards: newFakeClipboardRepo(),
		users:      newFakeUserRepo(),
		auditLogs:  &fakeAuditLogRepo{},
	}}
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type publishedEvent struct {
	eventType string
	data      map[string]interface{}
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, eventType string, data map[string]interface{}) {
	p.events = append(p.events, publishedEvent{eventType: eventType, data: data})
}

type fakeEmailService struct {
	sent    []string
	sendErr error
}

func (e *fakeEmailService) SendShareLink(toEmail, _, _, _ string) error {
	if e.sendErr != nil {
		return e.sendErr
	}
	e.sent = append(e.sent, toEmail)
	return nil
}

func newClipboardFixture() (*fakeUowFactory, *fakePublisher, *fakeEmailService, IClipboardService) {
	factory := newFakeUowFactory()
	publisher := &fakePublisher{}
	email := &fakeEmailService{}
	svc := NewClipboardService(factory, publisher, email, "http://localhost:5173")
	return factory, publisher, email, svc
}

func userFixture(subject string) *entity.User {
	return &entity.User{
		Id:      uuid.New(),
		Subject: subject,
		Email:   subject + "@example.com",
	}
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var httpErr *serverutils.HttpError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Code
}

// ---- Create ----

func TestClipboardCreate(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	t.Run("anonymous with expiry", func(t *testing.T) {
		_, publisher, _, svc := newClipboardFixture()

		res, err := svc.Create(ctx, nil, &dto.CreateClipboardRequest{
			Content:   "hello",
			ExpiresAt: &expiry,
			IsPublic:  true,
		})
		require.NoError(t, err)
		assert.Len(t, res.Code, 6)
		assert.Nil(t, res.User)
		assert.True(t, res.IsPublic)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, events.ClipboardCreated, publisher.events[0].eventType)
	})

	t.Run("anonymous without expiry is rejected", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()

		_, err := svc.Create(ctx, nil, &dto.CreateClipboardRequest{Content: "hello"})
		assert.Equal(t, fiber.StatusUnauthorized, httpStatus(t, err))
	})

	t.Run("authenticated permanent clipboard", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		caller := userFixture("user-1")

		res, err := svc.Create(ctx, caller, &dto.CreateClipboardRequest{Content: "keep me"})
		require.NoError(t, err)
		assert.Nil(t, res.ExpiresAt)
	})

	t.Run("owner set to caller subject", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		caller := userFixture("user-1")
		owner := "user-1"

		res, err := svc.Create(ctx, caller, &dto.CreateClipboardRequest{Content: "mine", User: &owner})
		require.NoError(t, err)
		require.NotNil(t, res.User)
		assert.Equal(t, "user-1", *res.User)
	})

	t.Run("owner requested by email maps to subject", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		caller := userFixture("user-1")
		owner := caller.Email

		res, err := svc.Create(ctx, caller, &dto.CreateClipboardRequest{Content: "mine", User: &owner})
		require.NoError(t, err)
		require.NotNil(t, res.User)
		assert.Equal(t, "user-1", *res.User)
	})

	t.Run("owner must be caller", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		caller := userFixture("user-1")
		owner := "somebody-else"

		_, err := svc.Create(ctx, caller, &dto.CreateClipboardRequest{Content: "mine", User: &owner})
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))
	})

	t.Run("anonymous cannot claim an owner", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		owner := "user-1"

		_, err := svc.Create(ctx, nil, &dto.CreateClipboardRequest{
			Content:   "mine",
			ExpiresAt: &expiry,
			User:      &owner,
		})
		assert.Equal(t, fiber.StatusUnauthorized, httpStatus(t, err))
	})

	t.Run("retries on code collision", func(t *testing.T) {
		factory, _, _, svc := newClipboardFixture()
		factory.uow.clipboards.collisions = 3

		res, err := svc.Create(ctx, userFixture("user-1"), &dto.CreateClipboardRequest{Content: "retry"})
		require.NoError(t, err)
		assert.Len(t, res.Code, 6)
	})

	t.Run("gives up after exhausting attempts", func(t *testing.T) {
		factory, _, _, svc := newClipboardFixture()
		factory.uow.clipboards.collisions = maxCodeAttempts

		_, err := svc.Create(ctx, userFixture("user-1"), &dto.CreateClipboardRequest{Content: "retry"})
		assert.Equal(t, fiber.StatusInternalServerError, httpStatus(t, err))
	})

	t.Run("repository errors pass through", func(t *testing.T) {
		factory, _, _, svc := newClipboardFixture()
		factory.uow.clipboards.createErr = errors.New("connection refused")

		_, err := svc.Create(ctx, userFixture("user-1"), &dto.CreateClipboardRequest{Content: "x"})
		assert.EqualError(t, err, "connection refused")
	})
}

// ---- Show ----

func TestClipboardShow(t *testing.T) {
	ctx := context.Background()

	seed := func(svc IClipboardService, caller *entity.User, req *dto.CreateClipboardRequest) string {
		res, err := svc.Create(ctx, caller, req)
		if err != nil {
			panic(err)
		}
		return res.Code
	}

	t.Run("unknown code", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()

		_, err := svc.Show(ctx, nil, "NOPE42")
		assert.Equal(t, fiber.StatusNotFound, httpStatus(t, err))
	})

	t.Run("expired record is removed and reported gone", func(t *testing.T) {
		factory, publisher, _, svc := newClipboardFixture()
		past := time.Now().Add(-time.Minute)
		code := seed(svc, userFixture("user-1"), &dto.CreateClipboardRequest{Content: "old", ExpiresAt: &past})
		publisher.events = nil

		_, err := svc.Show(ctx, nil, code)
		assert.Equal(t, fiber.StatusGone, httpStatus(t, err))

		// Lazy cleanup removed the row.
		assert.NotContains(t, factory.uow.clipboards.byCode, code)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, events.ClipboardExpired, publisher.events[0].eventType)
	})

	t.Run("private record hidden from strangers", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		owner := userFixture("user-1")
		subject := owner.Subject
		code := seed(svc, owner, &dto.CreateClipboardRequest{Content: "secret", User: &subject})

		_, err := svc.Show(ctx, nil, code)
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))

		_, err = svc.Show(ctx, userFixture("user-2"), code)
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))

		res, err := svc.Show(ctx, owner, code)
		require.NoError(t, err)
		assert.Equal(t, "secret", res.Content)
	})

	t.Run("public owned record readable by anyone", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		owner := userFixture("user-1")
		subject := owner.Subject
		code := seed(svc, owner, &dto.CreateClipboardRequest{Content: "post", User: &subject, IsPublic: true})

		res, err := svc.Show(ctx, nil, code)
		require.NoError(t, err)
		assert.Equal(t, "post", res.Content)
	})

	t.Run("anonymous private record readable by anyone with the code", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		expiry := time.Now().Add(time.Hour)
		code := seed(svc, nil, &dto.CreateClipboardRequest{Content: "drop", ExpiresAt: &expiry})

		res, err := svc.Show(ctx, nil, code)
		require.NoError(t, err)
		assert.Equal(t, "drop", res.Content)
	})
}

// ---- List ----

func TestClipboardList(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newClipboardFixture()

	owner := userFixture("user-1")
	subject := owner.Subject
	expiry := time.Now().Add(time.Hour)

	mustCreate := func(caller *entity.User, req *dto.CreateClipboardRequest) {
		_, err := svc.Create(ctx, caller, req)
		require.NoError(t, err)
	}

	mustCreate(nil, &dto.CreateClipboardRequest{Content: "public-anon", ExpiresAt: &expiry, IsPublic: true})
	mustCreate(nil, &dto.CreateClipboardRequest{Content: "private-anon", ExpiresAt: &expiry})
	mustCreate(owner, &dto.CreateClipboardRequest{Content: "private-owned", User: &subject})
	mustCreate(owner, &dto.CreateClipboardRequest{Content: "public-owned", User: &subject, IsPublic: true})

	t.Run("anonymous sees only public", func(t *testing.T) {
		res, err := svc.List(ctx, nil, 0, 100)
		require.NoError(t, err)
		assert.Len(t, res, 2)
		for _, clip := range res {
			assert.True(t, clip.IsPublic)
		}
	})

	t.Run("owner sees public plus own private", func(t *testing.T) {
		res, err := svc.List(ctx, owner, 0, 100)
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("pagination bounds the result", func(t *testing.T) {
		res, err := svc.List(ctx, owner, 0, 2)
		require.NoError(t, err)
		assert.Len(t, res, 2)

		rest, err := svc.List(ctx, owner, 2, 2)
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})
}

// ---- Update ----

func TestClipboardUpdate(t *testing.T) {
	ctx := context.Background()
	owner := userFixture("user-1")
	subject := owner.Subject

	seedOwned := func(svc IClipboardService) string {
		res, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "v1", User: &subject})
		require.NoError(t, err)
		return res.Code
	}

	t.Run("owner updates content", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		code := seedOwned(svc)
		content := "v2"

		res, err := svc.Update(ctx, owner, &dto.UpdateClipboardRequest{Code: code, Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "v2", res.Content)
		assert.NotNil(t, res.UpdatedAt)
	})

	t.Run("stranger cannot update owned record", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		code := seedOwned(svc)
		content := "hijack"

		_, err := svc.Update(ctx, userFixture("user-2"), &dto.UpdateClipboardRequest{Code: code, Content: &content})
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))

		_, err = svc.Update(ctx, nil, &dto.UpdateClipboardRequest{Code: code, Content: &content})
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))
	})

	t.Run("anyone may update an anonymous record", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		expiry := time.Now().Add(time.Hour)
		created, err := svc.Create(ctx, nil, &dto.CreateClipboardRequest{Content: "v1", ExpiresAt: &expiry})
		require.NoError(t, err)
		content := "v2"

		res, err := svc.Update(ctx, nil, &dto.UpdateClipboardRequest{Code: created.Code, Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "v2", res.Content)
	})

	t.Run("owner clears ownership with empty user", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		code := seedOwned(svc)
		empty := ""

		res, err := svc.Update(ctx, owner, &dto.UpdateClipboardRequest{Code: code, User: &empty})
		require.NoError(t, err)
		assert.Nil(t, res.User)
	})

	t.Run("cannot reassign to another user", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		code := seedOwned(svc)
		other := "user-2"

		_, err := svc.Update(ctx, owner, &dto.UpdateClipboardRequest{Code: code, User: &other})
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))
	})

	t.Run("unknown code", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		content := "x"

		_, err := svc.Update(ctx, owner, &dto.UpdateClipboardRequest{Code: "NOPE42", Content: &content})
		assert.Equal(t, fiber.StatusNotFound, httpStatus(t, err))
	})
}

// ---- Delete ----

func TestClipboardDelete(t *testing.T) {
	ctx := context.Background()
	owner := userFixture("user-1")
	subject := owner.Subject

	t.Run("owner deletes", func(t *testing.T) {
		factory, publisher, _, svc := newClipboardFixture()
		res, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "bye", User: &subject})
		require.NoError(t, err)
		publisher.events = nil

		require.NoError(t, svc.Delete(ctx, owner, res.Code))
		assert.Empty(t, factory.uow.clipboards.byCode)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, events.ClipboardDeleted, publisher.events[0].eventType)
	})

	t.Run("stranger cannot delete owned record", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		res, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "bye", User: &subject})
		require.NoError(t, err)

		err = svc.Delete(ctx, userFixture("user-2"), res.Code)
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))
	})

	t.Run("unknown code", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()

		err := svc.Delete(ctx, owner, "NOPE42")
		assert.Equal(t, fiber.StatusNotFound, httpStatus(t, err))
	})
}

// ---- Share ----

func TestClipboardShare(t *testing.T) {
	ctx := context.Background()
	owner := userFixture("user-1")
	subject := owner.Subject

	t.Run("owner shares by email", func(t *testing.T) {
		_, publisher, email, svc := newClipboardFixture()
		res, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "look", User: &subject})
		require.NoError(t, err)
		publisher.events = nil

		err = svc.Share(ctx, owner, &dto.ShareClipboardRequest{Code: res.Code, Email: "friend@example.com"})
		require.NoError(t, err)
		assert.Equal(t, []string{"friend@example.com"}, email.sent)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, events.ClipboardShared, publisher.events[0].eventType)
	})

	t.Run("private record cannot be shared by strangers", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		res, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "look", User: &subject})
		require.NoError(t, err)

		err = svc.Share(ctx, userFixture("user-2"), &dto.ShareClipboardRequest{Code: res.Code, Email: "friend@example.com"})
		assert.Equal(t, fiber.StatusForbidden, httpStatus(t, err))
	})

	t.Run("expired record", func(t *testing.T) {
		_, _, _, svc := newClipboardFixture()
		past := time.Now().Add(-time.Minute)
		res, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "old", ExpiresAt: &past})
		require.NoError(t, err)

		err = svc.Share(ctx, owner, &dto.ShareClipboardRequest{Code: res.Code, Email: "friend@example.com"})
		assert.Equal(t, fiber.StatusGone, httpStatus(t, err))
	})

	t.Run("mailer failure maps to bad gateway", func(t *testing.T) {
		_, _, email, svc := newClipboardFixture()
		email.sendErr = errors.New("smtp down")
		res, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "look", User: &subject})
		require.NoError(t, err)

		err = svc.Share(ctx, owner, &dto.ShareClipboardRequest{Code: res.Code, Email: "friend@example.com"})
		assert.Equal(t, fiber.StatusBadGateway, httpStatus(t, err))
	})
}

// ---- Sweep ----

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	factory, publisher, _, svc := newClipboardFixture()
	owner := userFixture("user-1")

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "old", ExpiresAt: &past})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, owner, &dto.CreateClipboardRequest{Content: "fresh", ExpiresAt: &future})
	require.NoError(t, err)
	publisher.events = nil

	removed, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)
	assert.Len(t, factory.uow.clipboards.byCode, 1)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.ClipboardExpired, publisher.events[0].eventType)

	// Nothing left to sweep; no event either.
	publisher.events = nil
	removed, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, publisher.events)
}
