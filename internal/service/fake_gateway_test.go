package service

import (
	"context"
	"sync"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
)

// fakeGateway 測試用的 IOrderGateway，未設定的操作一律回成功
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	listTablesFn     func(ctx context.Context, classificationID *int) ([]model.Table, error)
	getPendingFn     func(ctx context.Context, tableID int) (*model.PendingOrder, error)
	saveOrderFn      func(ctx context.Context, req model.SaveOrderRequest) error
	combineFn        func(ctx context.Context, originTableID int, tablesToMerge []int) error
	moveFn           func(ctx context.Context, originTableID, destinationTableID int) error
	deletePendingFn  func(ctx context.Context, tableID int) error
	assignCustomerFn func(ctx context.Context, tableID, customerID int, note string) error
	finalizeFn       func(ctx context.Context, req model.InvoiceRequest) (string, error)
	listProductsFn   func(ctx context.Context) ([]model.Product, error)
	listCategoriesFn func(ctx context.Context) ([]model.ProductCategory, error)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: make(map[string]int)}
}

func (f *fakeGateway) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeGateway) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) ListTables(ctx context.Context, classificationID *int) ([]model.Table, error) {
	f.record("ListTables")
	if f.listTablesFn != nil {
		return f.listTablesFn(ctx, classificationID)
	}
	return nil, nil
}

func (f *fakeGateway) GetPendingOrder(ctx context.Context, tableID int) (*model.PendingOrder, error) {
	f.record("GetPendingOrder")
	if f.getPendingFn != nil {
		return f.getPendingFn(ctx, tableID)
	}
	return nil, nil
}

func (f *fakeGateway) SaveOrder(ctx context.Context, req model.SaveOrderRequest) error {
	f.record("SaveOrder")
	if f.saveOrderFn != nil {
		return f.saveOrderFn(ctx, req)
	}
	return nil
}

func (f *fakeGateway) CombineTables(ctx context.Context, originTableID int, tablesToMerge []int) error {
	f.record("CombineTables")
	if f.combineFn != nil {
		return f.combineFn(ctx, originTableID, tablesToMerge)
	}
	return nil
}

func (f *fakeGateway) MoveOrder(ctx context.Context, originTableID, destinationTableID int) error {
	f.record("MoveOrder")
	if f.moveFn != nil {
		return f.moveFn(ctx, originTableID, destinationTableID)
	}
	return nil
}

func (f *fakeGateway) DeletePendingOrder(ctx context.Context, tableID int) error {
	f.record("DeletePendingOrder")
	if f.deletePendingFn != nil {
		return f.deletePendingFn(ctx, tableID)
	}
	return nil
}

func (f *fakeGateway) AssignCustomer(ctx context.Context, tableID, customerID int, note string) error {
	f.record("AssignCustomer")
	if f.assignCustomerFn != nil {
		return f.assignCustomerFn(ctx, tableID, customerID, note)
	}
	return nil
}

func (f *fakeGateway) FinalizeInvoice(ctx context.Context, req model.InvoiceRequest) (string, error) {
	f.record("FinalizeInvoice")
	if f.finalizeFn != nil {
		return f.finalizeFn(ctx, req)
	}
	return "", nil
}

func (f *fakeGateway) ListProducts(ctx context.Context) ([]model.Product, error) {
	f.record("ListProducts")
	if f.listProductsFn != nil {
		return f.listProductsFn(ctx)
	}
	return nil, nil
}

func (f *fakeGateway) ListCategories(ctx context.Context) ([]model.ProductCategory, error) {
	f.record("ListCategories")
	if f.listCategoriesFn != nil {
		return f.listCategoriesFn(ctx)
	}
	return nil, nil
}

// fakeRefresher 記錄 Refresh 被觸發的次數
type fakeRefresher struct {
	mu    sync.Mutex
	count int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	return f.err
}

func (f *fakeRefresher) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}
