package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RoyceAzure/lab/pos/internal/infra/gateway"
)

type ITransferService interface {
	Combine(ctx context.Context, originTableID int, tablesToMerge []int) error
	Move(ctx context.Context, originTableID, destinationTableID int) error
}

// TransferService 桌子之間搬移與合併待結訂單
// 兩個操作都是純遠端呼叫，本地不預先合併購物車，
// 成功或發生狀態衝突後觸發快照重載讓畫面收斂
type TransferService struct {
	gateway gateway.IOrderGateway
	view    ITableViewRefresher
	guard   *tableGuard
	logger  zerolog.Logger
}

func NewTransferService(gw gateway.IOrderGateway, view ITableViewRefresher, logger zerolog.Logger) *TransferService {
	return &TransferService{
		gateway: gw,
		view:    view,
		guard:   newTableGuard(),
		logger:  logger,
	}
}

// Combine 把列出的桌子併入起始桌
// 起始桌不可出現在合併清單，這種誤用在發出請求前就擋下
func (s *TransferService) Combine(ctx context.Context, originTableID int, tablesToMerge []int) error {
	if len(tablesToMerge) == 0 {
		return fmt.Errorf("%w: no tables to merge", ErrInvalidArgument)
	}
	for _, id := range tablesToMerge {
		if id == originTableID {
			return fmt.Errorf("%w: cannot merge table %d into itself", ErrInvalidArgument, originTableID)
		}
	}

	if !s.guard.acquire(originTableID) {
		return fmt.Errorf("%w: table %d", ErrOperationInFlight, originTableID)
	}
	defer s.guard.release(originTableID)

	if err := s.gateway.CombineTables(ctx, originTableID, tablesToMerge); err != nil {
		return fmt.Errorf("combine tables into %d: %w", originTableID, err)
	}

	s.refreshView(ctx, originTableID)
	return nil
}

// Move 整份待結訂單搬到另一張桌子
// 目的桌是否已佔用不在本地預檢，快照可能已過期，
// 以遠端的 ErrConflict 為準，衝突時一樣重載快照
func (s *TransferService) Move(ctx context.Context, originTableID, destinationTableID int) error {
	if originTableID == destinationTableID {
		return fmt.Errorf("%w: origin and destination are the same table", ErrInvalidArgument)
	}

	if !s.guard.acquire(originTableID) {
		return fmt.Errorf("%w: table %d", ErrOperationInFlight, originTableID)
	}
	defer s.guard.release(originTableID)

	if err := s.gateway.MoveOrder(ctx, originTableID, destinationTableID); err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			// 目的桌已被佔用，本地什麼都不動，只重載快照
			s.refreshView(ctx, originTableID)
		}
		return fmt.Errorf("move order from %d to %d: %w", originTableID, destinationTableID, err)
	}

	s.refreshView(ctx, originTableID)
	return nil
}

func (s *TransferService) refreshView(ctx context.Context, tableID int) {
	if err := s.view.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Int("table", tableID).Msg("refresh after transfer failed")
	}
}
