package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/pagination"
	"github.com/wichananm65/storefront-api/internal/product"
	"github.com/wichananm65/storefront-api/internal/result"
)

// TxObserver is told how every order transaction ended.
type TxObserver interface {
	ObserveOrderTx(operation string, committed bool)
}

type noopObserver struct{}

func (noopObserver) ObserveOrderTx(string, bool) {}

type Service struct {
	repo      Repository
	presenter product.Presenter
	observer  TxObserver
	log       logrus.FieldLogger
}

func NewService(r Repository, presenter product.Presenter, observer TxObserver, log logrus.FieldLogger) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{
		repo:      r,
		presenter: presenter,
		observer:  observer,
		log:       log.WithField("service", "order"),
	}
}

func (s *Service) List(ctx context.Context, userID int64, p pagination.Params) result.Result[pagination.Page[Order]] {
	orders, total, err := s.repo.ListByUser(ctx, userID, p)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("list orders failed")
		return result.Fail[pagination.Page[Order]]("failed to list orders")
	}
	for i := range orders {
		s.present(&orders[i])
	}
	return result.OK("orders retrieved successfully", pagination.New(orders, p, total))
}

func (s *Service) Get(ctx context.Context, id int64) result.Result[Order] {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Order]("order not found")
		}
		s.log.WithError(err).WithField("order_id", id).Error("get order failed")
		return result.Fail[Order]("failed to load order")
	}
	s.present(&o)
	return result.OK("order retrieved successfully", o)
}

// Create writes the order and all of its items in one transaction. Either
// every row is committed or none is.
func (s *Service) Create(ctx context.Context, userID int64, in NewOrder) result.Result[Order] {
	var created Order
	err := s.repo.WithinTx(ctx, func(st Store) error {
		o, err := st.InsertOrder(ctx, Order{
			UserID:      userID,
			OrderNumber: NewOrderNumber(),
			TotalAmount: in.TotalAmount,
			Status:      in.Status,
			Notes:       in.Notes,
		})
		if err != nil {
			return err
		}
		o.Items, err = insertItems(ctx, st, o.ID, in.Items)
		if err != nil {
			return err
		}
		created = o
		return nil
	})
	s.observer.ObserveOrderTx("create", err == nil)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("create order failed")
		return result.Fail[Order]("failed to create order")
	}

	return result.OK("order created successfully", s.reload(ctx, created))
}

// Update applies ch to the order in one transaction. Supplied items replace
// the existing ones wholesale.
func (s *Service) Update(ctx context.Context, id int64, ch Changes) result.Result[Order] {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Order]("order not found")
		}
		s.log.WithError(err).WithField("order_id", id).Error("load order for update failed")
		return result.Fail[Order]("failed to update order")
	}

	if ch.TotalAmount != nil {
		current.TotalAmount = *ch.TotalAmount
	}
	if ch.Status != nil {
		current.Status = ch.Status
	}
	if ch.Notes != nil {
		current.Notes = ch.Notes
	}

	var updated Order
	err = s.repo.WithinTx(ctx, func(st Store) error {
		o, err := st.UpdateOrder(ctx, current)
		if err != nil {
			return err
		}
		o.Items = current.Items
		if ch.Items != nil {
			if err := st.DeleteItems(ctx, o.ID); err != nil {
				return err
			}
			if o.Items, err = insertItems(ctx, st, o.ID, ch.Items); err != nil {
				return err
			}
		}
		updated = o
		return nil
	})
	s.observer.ObserveOrderTx("update", err == nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Order]("order not found")
		}
		s.log.WithError(err).WithField("order_id", id).Error("update order failed")
		return result.Fail[Order]("failed to update order")
	}

	return result.OK("order updated successfully", s.reload(ctx, updated))
}

func (s *Service) Delete(ctx context.Context, id int64) result.Result[Order] {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[Order]("order not found")
		}
		s.log.WithError(err).WithField("order_id", id).Error("delete order failed")
		return result.Fail[Order]("failed to delete order")
	}
	return result.Done[Order]("order deleted successfully")
}

// reload reads the committed order back with products attached. The write
// already succeeded, so a failed read falls back to what was written.
func (s *Service) reload(ctx context.Context, written Order) Order {
	o, err := s.repo.GetByID(ctx, written.ID)
	if err != nil {
		s.log.WithError(err).WithField("order_id", written.ID).Warn("reload order failed")
		o = written
	}
	s.present(&o)
	return o
}

func (s *Service) present(o *Order) {
	for i := range o.Items {
		if o.Items[i].Product != nil {
			s.presenter.Present(o.Items[i].Product)
		}
	}
}

func insertItems(ctx context.Context, st Store, orderID int64, in []ItemInput) ([]Item, error) {
	items := make([]Item, 0, len(in))
	for i, it := range in {
		created, err := st.InsertItem(ctx, orderID, it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, created)
	}
	return items, nil
}
