package product

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/category"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/result"
	"github.com/wichananm65/storefront-api/internal/storage"
)

// CategoryReader resolves the category a product belongs to.
type CategoryReader interface {
	GetByID(ctx context.Context, id int64) (category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryReader
	files      storage.FileStore
	presenter  Presenter
	log        logrus.FieldLogger
}

func NewService(r Repository, categories CategoryReader, files storage.FileStore, presenter Presenter, log logrus.FieldLogger) *Service {
	return &Service{
		repo:       r,
		categories: categories,
		files:      files,
		presenter:  presenter,
		log:        log.WithField("service", "product"),
	}
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) result.Result[pagination.Page[Product]] {
	f.Search = strings.TrimSpace(f.Search)
	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		s.log.WithError(err).Error("list products failed")
		return result.Fail[pagination.Page[Product]]("failed to list products")
	}
	s.presenter.PresentAll(items)
	return result.OK("products retrieved successfully", pagination.New(items, p, total))
}

func (s *Service) ListByCategory(ctx context.Context, categoryID int64) result.Result[[]Product] {
	items, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		s.log.WithError(err).WithField("category_id", categoryID).Error("list products by category failed")
		return result.Fail[[]Product]("failed to list products")
	}
	s.presenter.PresentAll(items)
	return result.OK("products retrieved successfully", items)
}

// Get returns the product with its category attached when it has one.
func (s *Service) Get(ctx context.Context, id int64) result.Result[Product] {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Product]("product not found")
		}
		s.log.WithError(err).WithField("product_id", id).Error("get product failed")
		return result.Fail[Product]("failed to load product")
	}

	if p.CategoryID != nil && s.categories != nil {
		c, err := s.categories.GetByID(ctx, *p.CategoryID)
		switch {
		case err == nil:
			p.Category = &c
		case !errors.Is(err, category.ErrNotFound):
			s.log.WithError(err).WithField("product_id", id).Warn("load product category failed")
		}
	}

	s.presenter.Present(&p)
	return result.OK("product retrieved successfully", p)
}

func (s *Service) Create(ctx context.Context, userID int64, in NewProduct) result.Result[Product] {
	p := Product{
		Name:        NormalizeName(in.Name),
		Description: normalizeText(in.Description),
		Price:       NormalizePrice(in.Price),
		Quantity:    in.Quantity,
		Type:        in.Type,
		Image:       strings.TrimSpace(in.ImagePath),
		UserAddID:   &userID,
		CategoryID:  in.CategoryID,
	}

	if in.Upload != nil {
		ref, err := s.files.Save(storage.ProductFolder, *in.Upload)
		if err != nil {
			s.log.WithError(err).Error("store product image failed")
			return result.Fail[Product]("failed to create product")
		}
		p.Image = ref
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("create product failed")
		return result.Fail[Product]("failed to create product")
	}
	s.presenter.Present(&created)
	return result.OK("product created successfully", created)
}

func (s *Service) Update(ctx context.Context, id int64, ch Changes) result.Result[Product] {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Product]("product not found")
		}
		s.log.WithError(err).WithField("product_id", id).Error("load product for update failed")
		return result.Fail[Product]("failed to update product")
	}

	if ch.Name != nil {
		p.Name = NormalizeName(*ch.Name)
	}
	if ch.Description != nil {
		p.Description = normalizeText(ch.Description)
	}
	if ch.Price != nil {
		p.Price = NormalizePrice(*ch.Price)
	}
	if ch.Quantity != nil {
		p.Quantity = *ch.Quantity
	}
	if ch.Type != nil {
		p.Type = *ch.Type
	}
	if ch.CategoryID != nil {
		p.CategoryID = ch.CategoryID
	}

	switch {
	case ch.Upload != nil:
		s.deleteImage(p)
		ref, err := s.files.Save(storage.ProductFolder, *ch.Upload)
		if err != nil {
			s.log.WithError(err).WithField("product_id", id).Error("store product image failed")
			return result.Fail[Product]("failed to update product")
		}
		p.Image = ref
	case ch.ImagePath != nil && strings.TrimSpace(*ch.ImagePath) != "":
		if next := strings.TrimSpace(*ch.ImagePath); next != p.Image {
			s.deleteImage(p)
			p.Image = next
		}
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Product]("product not found")
		}
		s.log.WithError(err).WithField("product_id", id).Error("update product failed")
		return result.Fail[Product]("failed to update product")
	}
	s.presenter.Present(&updated)
	return result.OK("product updated successfully", updated)
}

func (s *Service) Delete(ctx context.Context, id int64) result.Result[Product] {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Product]("product not found")
		}
		s.log.WithError(err).WithField("product_id", id).Error("load product for delete failed")
		return result.Fail[Product]("failed to delete product")
	}

	s.deleteImage(p)

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Product]("product not found")
		}
		s.log.WithError(err).WithField("product_id", id).Error("delete product failed")
		return result.Fail[Product]("failed to delete product")
	}
	return result.Done[Product]("product deleted successfully")
}

func (s *Service) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	return s.repo.NameTaken(ctx, NormalizeName(name), exceptID)
}

// MissingIDs returns the ids that do not belong to any product, in input order.
func (s *Service) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	missing := make([]int64, 0)
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// deleteImage removes the stored upload behind a product image. Only files in
// the product folder are touched and a missing file is not an error.
func (s *Service) deleteImage(p Product) {
	if strings.TrimSpace(p.Image) == "" {
		return
	}
	ref := ImageURL(p.Image, s.presenter.BaseURL)
	if !s.files.Within(storage.ProductFolder, ref) {
		return
	}
	if err := s.files.Delete(ref); err != nil {
		s.log.WithError(err).WithField("product_id", p.ID).Warn("delete product image failed")
	}
}

func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
