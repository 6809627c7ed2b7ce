package category

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/result"
	"github.com/wichananm65/storefront-api/internal/storage"
)

type Service struct {
	repo  Repository
	files storage.FileStore
	log   logrus.FieldLogger
}

func NewService(r Repository, files storage.FileStore, log logrus.FieldLogger) *Service {
	return &Service{repo: r, files: files, log: log.WithField("service", "category")}
}

func (s *Service) List(ctx context.Context, search string, p pagination.Params) result.Result[pagination.Page[Category]] {
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), p)
	if err != nil {
		s.log.WithError(err).Error("list categories failed")
		return result.Fail[pagination.Page[Category]]("failed to list categories")
	}
	return result.OK("categories retrieved successfully", pagination.New(items, p, total))
}

func (s *Service) Get(ctx context.Context, id int64) result.Result[Category] {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Category]("category not found")
		}
		s.log.WithError(err).WithField("category_id", id).Error("get category failed")
		return result.Fail[Category]("failed to load category")
	}
	return result.OK("category retrieved successfully", c)
}

func (s *Service) Create(ctx context.Context, userID int64, in NewCategory) result.Result[Category] {
	c := Category{
		Name:      strings.TrimSpace(in.Name),
		Note:      normalizeNote(in.Note),
		UserAddID: &userID,
	}

	if in.Image != nil {
		ref, err := s.files.Save(storage.CategoryFolder, *in.Image)
		if err != nil {
			s.log.WithError(err).Error("store category image failed")
			return result.Fail[Category]("failed to create category")
		}
		c.Image = &ref
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("create category failed")
		return result.Fail[Category]("failed to create category")
	}
	return result.OK("category created successfully", created)
}

func (s *Service) Update(ctx context.Context, id int64, ch Changes) result.Result[Category] {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Category]("category not found")
		}
		s.log.WithError(err).WithField("category_id", id).Error("load category for update failed")
		return result.Fail[Category]("failed to update category")
	}

	if ch.Name != nil {
		c.Name = strings.TrimSpace(*ch.Name)
	}
	if ch.Note != nil {
		c.Note = normalizeNote(ch.Note)
	}
	if ch.Image != nil {
		if c.Image != nil {
			if err := s.files.Delete(*c.Image); err != nil {
				s.log.WithError(err).WithField("category_id", id).Warn("delete previous category image failed")
			}
		}
		ref, err := s.files.Save(storage.CategoryFolder, *ch.Image)
		if err != nil {
			s.log.WithError(err).WithField("category_id", id).Error("store category image failed")
			return result.Fail[Category]("failed to update category")
		}
		c.Image = &ref
	}

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Category]("category not found")
		}
		s.log.WithError(err).WithField("category_id", id).Error("update category failed")
		return result.Fail[Category]("failed to update category")
	}
	return result.OK("category updated successfully", updated)
}

func (s *Service) Delete(ctx context.Context, id int64) result.Result[Category] {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Category]("category not found")
		}
		s.log.WithError(err).WithField("category_id", id).Error("load category for delete failed")
		return result.Fail[Category]("failed to delete category")
	}

	if c.Image != nil {
		if err := s.files.Delete(*c.Image); err != nil {
			s.log.WithError(err).WithField("category_id", id).Warn("delete category image failed")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Category]("category not found")
		}
		s.log.WithError(err).WithField("category_id", id).Error("delete category failed")
		return result.Fail[Category]("failed to delete category")
	}
	return result.Done[Category]("category deleted successfully")
}

// Exists backs the category_id rule of product requests.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	return s.repo.NameTaken(ctx, strings.TrimSpace(name), exceptID)
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
