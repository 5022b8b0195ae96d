package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
	"github.com/RoyceAzure/lab/pos/internal/infra/gateway"
)

const DefaultPollInterval = 10 * time.Second

type ServiceError error

var (
	ErrInvalidArgument   ServiceError = errors.New("invalid argument")
	ErrTableNotFound     ServiceError = errors.New("table not found in current snapshot")
	ErrInconsistentState ServiceError = errors.New("table occupied but no pending order exists")
)

// ITableViewRefresher 只需要觸發重載的元件依賴這個窄介面
type ITableViewRefresher interface {
	Refresh(ctx context.Context) error
}

type ITableViewService interface {
	ITableViewRefresher
	SetClassificationFilter(classificationID *int)
	Snapshot() []model.Table
	Lookup(tableID int) (model.Table, bool)
	RemovePendingOrder(ctx context.Context, tableID int) (bool, error)
	AssignCustomer(ctx context.Context, tableID, customerID int, note string) error
	StartPolling(ctx context.Context, interval time.Duration)
}

// TableViewService 全部桌子的本地狀態快照
// 快照只能被整份替換，失敗時保留舊快照，絕不清空畫面
type TableViewService struct {
	gateway gateway.IOrderGateway
	logger  zerolog.Logger

	mu               sync.Mutex
	tables           []model.Table
	classificationID *int
	// 單調遞增的請求序號，回應完成時序號不是最新發出的就丟棄
	issuedSeq uint64
	// 快照整份替換後的明確通知，取代來源框架的隱式依賴追蹤
	onChange func([]model.Table)
}

func NewTableViewService(gw gateway.IOrderGateway, logger zerolog.Logger) *TableViewService {
	return &TableViewService{
		gateway: gw,
		logger:  logger,
	}
}

// SetOnChange 註冊快照替換後的通知，回呼拿到的是複本
func (s *TableViewService) SetOnChange(fn func([]model.Table)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *TableViewService) SetClassificationFilter(classificationID *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classificationID = classificationID
}

// Refresh 重新載入全部桌子狀態
// 手動與定時重載可能同時在途，以完成當下序號是否最新決定套不套用，
// 過期回應直接丟棄，不算錯誤
func (s *TableViewService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issuedSeq++
	seq := s.issuedSeq
	filter := s.classificationID
	s.mu.Unlock()

	tables, err := s.gateway.ListTables(ctx, filter)
	if err != nil {
		// 保留舊快照
		return fmt.Errorf("refresh table states: %w", err)
	}

	s.mu.Lock()
	if latest := s.issuedSeq; seq != latest {
		s.mu.Unlock()
		s.logger.Debug().Uint64("seq", seq).Uint64("latest", latest).Msg("discard stale table snapshot")
		return nil
	}
	s.tables = tables
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		snapshot := make([]model.Table, len(tables))
		copy(snapshot, tables)
		notify(snapshot)
	}
	return nil
}

// Snapshot 回傳快照複本
func (s *TableViewService) Snapshot() []model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	tables := make([]model.Table, len(s.tables))
	copy(tables, s.tables)
	return tables
}

func (s *TableViewService) Lookup(tableID int) (model.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range s.tables {
		if table.TableID == tableID {
			return table, true
		}
	}
	return model.Table{}, false
}

// RemovePendingOrder 刪除桌子的待結訂單
// 桌子未佔用時視為無事可做，回傳 (false, nil) 而不是錯誤
func (s *TableViewService) RemovePendingOrder(ctx context.Context, tableID int) (bool, error) {
	table, ok := s.Lookup(tableID)
	if !ok {
		return false, fmt.Errorf("%w: table %d", ErrTableNotFound, tableID)
	}
	if !table.Occupied {
		return false, nil
	}

	if err := s.gateway.DeletePendingOrder(ctx, tableID); err != nil {
		return false, fmt.Errorf("delete pending order of table %d: %w", tableID, err)
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Int("table", tableID).Msg("refresh after delete failed")
	}
	return true, nil
}

func (s *TableViewService) AssignCustomer(ctx context.Context, tableID, customerID int, note string) error {
	if err := s.gateway.AssignCustomer(ctx, tableID, customerID, note); err != nil {
		return fmt.Errorf("assign customer to table %d: %w", tableID, err)
	}
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Int("table", tableID).Msg("refresh after assign customer failed")
	}
	return nil
}

// StartPolling 啟動背景定時重載，ctx 取消即停止
// 間隔內的失敗只記log，下一輪自然重試
func (s *TableViewService) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					s.logger.Warn().Err(err).Msg("scheduled table refresh failed")
				}
			}
		}
	}()
}
