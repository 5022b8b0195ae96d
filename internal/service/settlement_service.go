package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
	"github.com/RoyceAzure/lab/pos/internal/infra/gateway"
	"github.com/RoyceAzure/lab/pos/internal/infra/producer"
)

var (
	ErrOverPayment         ServiceError = errors.New("payment does not match remaining due")
	ErrSettlementNotReady  ServiceError = errors.New("settlement is not ready to submit")
	ErrSettlementSubmitted ServiceError = errors.New("settlement already submitted")
)

// SettlementState 單次結帳的狀態機
// Empty → Building → Validated → Submitting → Settled
// 送出失敗退回 Validated，已輸入的付款全部保留
type SettlementState int

const (
	SettlementEmpty SettlementState = iota
	SettlementBuilding
	SettlementValidated
	SettlementSubmitting
	SettlementSettled
)

func (s SettlementState) String() string {
	switch s {
	case SettlementEmpty:
		return "empty"
	case SettlementBuilding:
		return "building"
	case SettlementValidated:
		return "validated"
	case SettlementSubmitting:
		return "submitting"
	case SettlementSettled:
		return "settled"
	default:
		return "unknown"
	}
}

type ISettlementEngine interface {
	Begin(cart *model.OrderCart, tip decimal.Decimal) error
	AddPayment(methodID int, tendered decimal.Decimal, reference *string) (model.Payment, error)
	RemovePayment(index int) error
	Payments() []model.Payment
	RemainingDue() decimal.Decimal
	State() SettlementState
	Submit(ctx context.Context) (string, error)
}

// SettlementEngine 把結清的購物車加小費與多筆付款轉成開立發票請求
// 金額一律用 decimal 計算，總額、找零、剩餘應付都不允許浮點累積誤差
type SettlementEngine struct {
	gateway   gateway.IOrderGateway
	view      ITableViewRefresher
	publisher producer.ISettlementEventPublisher // 可為 nil，結帳結果不受事件發布影響
	logger    zerolog.Logger

	mu       sync.Mutex
	state    SettlementState
	cart     *model.OrderCart
	tip      decimal.Decimal
	payments []model.Payment
}

func NewSettlementEngine(gw gateway.IOrderGateway, view ITableViewRefresher, publisher producer.ISettlementEventPublisher, logger zerolog.Logger) *SettlementEngine {
	return &SettlementEngine{
		gateway:   gw,
		view:      view,
		publisher: publisher,
		logger:    logger,
		state:     SettlementEmpty,
		tip:       decimal.Zero,
	}
}

// Begin 以非空購物車開始一次結帳，重設先前輸入的付款
func (e *SettlementEngine) Begin(cart *model.OrderCart, tip decimal.Decimal) error {
	if cart == nil || cart.IsEmpty() {
		return fmt.Errorf("%w: settlement requires a non-empty cart", ErrEmptyCart)
	}
	if tip.IsNegative() {
		return fmt.Errorf("%w: tip must not be negative", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == SettlementSubmitting {
		return fmt.Errorf("%w: table %d", ErrOperationInFlight, e.cart.TableID)
	}

	e.state = SettlementBuilding
	e.cart = cart
	e.tip = tip
	e.payments = nil
	return nil
}

// totalDue 購物車總額加小費，每次重算
func (e *SettlementEngine) totalDue() decimal.Decimal {
	return e.cart.Total().Add(e.tip)
}

func (e *SettlementEngine) remainingDue() decimal.Decimal {
	remaining := e.totalDue()
	for _, payment := range e.payments {
		remaining = remaining.Sub(payment.AmountApplied)
	}
	return remaining
}

func (e *SettlementEngine) RemainingDue() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cart == nil {
		return decimal.Zero
	}
	return e.remainingDue()
}

// AddPayment 新增一筆付款
// 現金折抵 min(收取, 剩餘應付)，超出部分成為找零；
// 現金以外必須恰好等於剩餘應付，否則拒絕，不找零。
// 剩餘應付歸零時自動轉入 Validated
func (e *SettlementEngine) AddPayment(methodID int, tendered decimal.Decimal, reference *string) (model.Payment, error) {
	if !tendered.IsPositive() {
		return model.Payment{}, fmt.Errorf("%w: tendered amount must be positive", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != SettlementBuilding {
		return model.Payment{}, fmt.Errorf("%w: cannot add payment in state %s", ErrSettlementNotReady, e.state)
	}

	remaining := e.remainingDue()
	payment := model.Payment{
		MethodID:       methodID,
		AmountTendered: tendered,
		Reference:      reference,
	}

	if model.IsCashMethod(methodID) {
		payment.AmountApplied = decimal.Min(tendered, remaining)
		payment.Change = tendered.Sub(payment.AmountApplied)
	} else {
		if !tendered.Equal(remaining) {
			return model.Payment{}, fmt.Errorf("%w: tendered %s, remaining due %s", ErrOverPayment, tendered, remaining)
		}
		payment.AmountApplied = tendered
		payment.Change = decimal.Zero
	}

	e.payments = append(e.payments, payment)
	if e.remainingDue().IsZero() {
		e.state = SettlementValidated
	}
	return payment, nil
}

// RemovePayment 移除第 index 筆付款，剩餘應付回升後退回 Building
func (e *SettlementEngine) RemovePayment(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != SettlementBuilding && e.state != SettlementValidated {
		return fmt.Errorf("%w: cannot remove payment in state %s", ErrSettlementNotReady, e.state)
	}
	if index < 0 || index >= len(e.payments) {
		return fmt.Errorf("%w: payment index %d out of range", ErrInvalidArgument, index)
	}

	e.payments = append(e.payments[:index], e.payments[index+1:]...)
	if e.remainingDue().IsZero() {
		e.state = SettlementValidated
	} else {
		e.state = SettlementBuilding
	}
	return nil
}

func (e *SettlementEngine) Payments() []model.Payment {
	e.mu.Lock()
	defer e.mu.Unlock()
	payments := make([]model.Payment, len(e.payments))
	copy(payments, e.payments)
	return payments
}

func (e *SettlementEngine) State() SettlementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Submit 送出開立發票
// Submitting 期間擋掉重複送出；失敗退回 Validated 保留付款讓使用者重試，
// 本引擎自己絕不自動重送，重複開發票的風險不能由客戶端吸收
func (e *SettlementEngine) Submit(ctx context.Context) (string, error) {
	e.mu.Lock()
	switch e.state {
	case SettlementSubmitting:
		e.mu.Unlock()
		return "", fmt.Errorf("%w: submission already in flight", ErrOperationInFlight)
	case SettlementSettled:
		e.mu.Unlock()
		return "", ErrSettlementSubmitted
	case SettlementValidated:
		// 允許送出
	default:
		state := e.state
		e.mu.Unlock()
		return "", fmt.Errorf("%w: state %s, remaining due must be zero", ErrSettlementNotReady, state)
	}

	req := model.InvoiceRequest{
		TableID:  e.cart.TableID,
		Tip:      e.tip,
		Payments: make([]model.Payment, len(e.payments)),
	}
	copy(req.Payments, e.payments)
	total := e.cart.Total()
	e.state = SettlementSubmitting
	e.mu.Unlock()

	message, err := e.gateway.FinalizeInvoice(ctx, req)

	e.mu.Lock()
	if err != nil {
		e.state = SettlementValidated
		e.mu.Unlock()
		return "", fmt.Errorf("finalize invoice of table %d: %w", req.TableID, err)
	}
	e.state = SettlementSettled
	cart := e.cart
	e.mu.Unlock()

	cart.Clear()
	e.publishSettled(ctx, req, total, message)
	if refreshErr := e.view.Refresh(ctx); refreshErr != nil {
		e.logger.Warn().Err(refreshErr).Int("table", req.TableID).Msg("refresh after settlement failed")
	}
	return message, nil
}

func (e *SettlementEngine) publishSettled(ctx context.Context, req model.InvoiceRequest, total decimal.Decimal, message string) {
	if e.publisher == nil {
		return
	}
	event := producer.NewSettledEvent(req.TableID, total, req.Tip, req.Payments, message)
	if err := e.publisher.PublishSettled(ctx, event); err != nil {
		e.logger.Warn().Err(err).Int("table", req.TableID).Msg("publish settlement event failed")
	}
}
