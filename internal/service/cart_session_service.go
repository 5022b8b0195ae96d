package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
	"github.com/RoyceAzure/lab/pos/internal/infra/gateway"
)

var ErrEmptyCart ServiceError = errors.New("cart is empty")

type ICartSessionService interface {
	Open(ctx context.Context, tableID int) (*model.OrderCart, error)
	Save(ctx context.Context, cart *model.OrderCart) error
}

// CartSessionService 桌子購物車的生命週期
// 開桌時向遠端取一次待結訂單還原購物車，之後所有編輯都是本地的，
// 直到明確呼叫 Save 才整份覆寫回遠端。
// 關閉畫面不取消在途的 Save：伺服器半套完成比晚到但可忽略的回應更糟
type CartSessionService struct {
	gateway gateway.IOrderGateway
	view    ITableViewService
	guard   *tableGuard
	logger  zerolog.Logger
}

func NewCartSessionService(gw gateway.IOrderGateway, view ITableViewService, logger zerolog.Logger) *CartSessionService {
	return &CartSessionService{
		gateway: gw,
		view:    view,
		guard:   newTableGuard(),
		logger:  logger,
	}
}

// Open 還原或建立桌子的購物車
// 快照說佔用中但遠端沒有待結訂單，代表快照已失真，
// 不能當成有效狀態呈現，回傳 ErrInconsistentState 並觸發重載
func (s *CartSessionService) Open(ctx context.Context, tableID int) (*model.OrderCart, error) {
	pending, err := s.gateway.GetPendingOrder(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("hydrate cart of table %d: %w", tableID, err)
	}

	if pending == nil {
		if table, ok := s.view.Lookup(tableID); ok && table.Occupied {
			if refreshErr := s.view.Refresh(ctx); refreshErr != nil {
				s.logger.Warn().Err(refreshErr).Int("table", tableID).Msg("refresh after inconsistency failed")
			}
			return nil, fmt.Errorf("%w: table %d", ErrInconsistentState, tableID)
		}
		return model.NewOrderCart(tableID), nil
	}

	return model.NewOrderCartFromPending(tableID, pending), nil
}

// Save 把購物車整份覆寫回遠端
// 同一張桌子同時只允許一個寫入在途；成功後清空本地購物車並觸發快照重載
func (s *CartSessionService) Save(ctx context.Context, cart *model.OrderCart) error {
	if cart == nil || cart.IsEmpty() {
		return fmt.Errorf("%w: nothing to save", ErrEmptyCart)
	}

	if !s.guard.acquire(cart.TableID) {
		return fmt.Errorf("%w: table %d", ErrOperationInFlight, cart.TableID)
	}
	defer s.guard.release(cart.TableID)

	if err := s.gateway.SaveOrder(ctx, cart.ToSaveRequest()); err != nil {
		// 本地資料保留，讓使用者決定重試
		return fmt.Errorf("save order of table %d: %w", cart.TableID, err)
	}

	cart.Clear()
	if err := s.view.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Int("table", cart.TableID).Msg("refresh after save failed")
	}
	return nil
}
