package implementation

import (
	"context"
	"errors"

	"clipboard-api-be/internal/entity"
	"clipboard-api-be/internal/mapper"
	"clipboard-api-be/internal/model"
	"clipboard-api-be/internal/repository/contract"
	"clipboard-api-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClipboardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ClipboardMapper
}

func NewClipboardRepository(db *gorm.DB) contract.ClipboardRepository {
	return &ClipboardRepositoryImpl{
		db:     db,
		mapper: mapper.NewClipboardMapper(),
	}
}

func (r *ClipboardRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ClipboardRepositoryImpl) Create(ctx context.Context, clipboard *entity.Clipboard) error {
	m := r.mapper.ToModel(clipboard)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*clipboard = *r.mapper.ToEntity(m)
	return nil
}

func (r *ClipboardRepositoryImpl) Update(ctx context.Context, clipboard *entity.Clipboard) error {
	m := r.mapper.ToModel(clipboard)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*clipboard = *r.mapper.ToEntity(m)
	return nil
}

func (r *ClipboardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Clipboard{}, id).Error
}

func (r *ClipboardRepositoryImpl) DeleteExpired(ctx context.Context, specs ...specification.Specification) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	res := query.Delete(&model.Clipboard{})
	return res.RowsAffected, res.Error
}

func (r *ClipboardRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Clipboard, error) {
	var m model.Clipboard
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ClipboardRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Clipboard, error) {
	var models []*model.Clipboard
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ClipboardRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Clipboard{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
