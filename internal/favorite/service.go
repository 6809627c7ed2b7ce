package favorite

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/product"
	"github.com/wichananm65/storefront-api/internal/result"
)

type Service struct {
	repo      Repository
	presenter product.Presenter
	log       logrus.FieldLogger
}

func NewService(r Repository, presenter product.Presenter, log logrus.FieldLogger) *Service {
	return &Service{repo: r, presenter: presenter, log: log.WithField("service", "favorite")}
}

func (s *Service) List(ctx context.Context, userID int64, p pagination.Params) result.Result[pagination.Page[Favorite]] {
	items, total, err := s.repo.ListByUser(ctx, userID, p)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("list favorites failed")
		return result.Fail[pagination.Page[Favorite]]("failed to list favorites")
	}
	for i := range items {
		s.present(&items[i])
	}
	return result.OK("favorites retrieved successfully", pagination.New(items, p, total))
}

func (s *Service) Get(ctx context.Context, id int64) result.Result[Favorite] {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Favorite]("favorite not found")
		}
		s.log.WithError(err).WithField("favorite_id", id).Error("get favorite failed")
		return result.Fail[Favorite]("failed to load favorite")
	}
	s.present(&f)
	return result.OK("favorite retrieved successfully", f)
}

// Create favorites a product for the user. Repeating the call returns the
// row created the first time.
func (s *Service) Create(ctx context.Context, userID, productID int64) result.Result[Favorite] {
	f, created, err := s.repo.FirstOrCreate(ctx, userID, productID)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Error("create favorite failed")
		return result.Fail[Favorite]("failed to add product to favorites")
	}
	if !created {
		s.log.WithField("favorite_id", f.ID).Debug("favorite already exists")
	}
	return result.OK("product added to favorites successfully", f)
}

func (s *Service) Update(ctx context.Context, id int64, ch Changes) result.Result[Favorite] {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Favorite]("favorite not found")
		}
		s.log.WithError(err).WithField("favorite_id", id).Error("load favorite for update failed")
		return result.Fail[Favorite]("failed to update favorite")
	}

	if ch.UserID != nil {
		f.UserID = *ch.UserID
	}
	if ch.ProductID != nil {
		f.ProductID = *ch.ProductID
	}

	updated, err := s.repo.Update(ctx, f)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Favorite]("favorite not found")
		}
		s.log.WithError(err).WithField("favorite_id", id).Error("update favorite failed")
		return result.Fail[Favorite]("failed to update favorite")
	}
	return result.OK("favorite updated successfully", updated)
}

func (s *Service) Delete(ctx context.Context, id int64) result.Result[Favorite] {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Favorite]("favorite not found")
		}
		s.log.WithError(err).WithField("favorite_id", id).Error("delete favorite failed")
		return result.Fail[Favorite]("failed to remove favorite")
	}
	return result.Done[Favorite]("favorite removed successfully")
}

func (s *Service) Check(ctx context.Context, userID, productID int64) result.Result[Status] {
	st := Status{ProductID: productID}
	f, err := s.repo.Find(ctx, userID, productID)
	switch {
	case err == nil:
		st.IsFavorite = true
		st.FavoriteID = &f.ID
	case !errors.Is(err, ErrNotFound):
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Error("check favorite failed")
		return result.Fail[Status]("failed to check favorite")
	}
	return result.OK("favorite status retrieved successfully", st)
}

// RemoveByProduct drops the user's favorite for productID.
func (s *Service) RemoveByProduct(ctx context.Context, userID, productID int64) result.Result[Favorite] {
	f, err := s.repo.Find(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Favorite]("favorite not found")
		}
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Error("find favorite failed")
		return result.Fail[Favorite]("failed to remove favorite")
	}
	return s.Delete(ctx, f.ID)
}

func (s *Service) PairTaken(ctx context.Context, userID, productID, exceptID int64) (bool, error) {
	return s.repo.PairTaken(ctx, userID, productID, exceptID)
}

func (s *Service) present(f *Favorite) {
	if f.Product != nil {
		s.presenter.Present(f.Product)
	}
}
