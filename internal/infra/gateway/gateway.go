package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
)

type GatewayError error

var (
	// ErrTransport 網路層失敗，不帶業務語意，呼叫端可提示重試
	ErrTransport GatewayError = errors.New("transport failure")
	// ErrConflict 遠端回報狀態衝突，例如目的桌已被佔用
	ErrConflict GatewayError = errors.New("conflict reported by remote")
	// ErrValidation 遠端業務規則拒絕，訊息原樣轉給呼叫端
	ErrValidation GatewayError = errors.New("remote validation failure")
)

// IOrderGateway 遠端訂單服務的邊界抽象
// 庫存扣減、發票號、稅額皆由遠端計算，本核心只負責送出正確請求並如實呈現回應
// 任何操作都不得自動重試，結帳重送與否由呼叫端決定
type IOrderGateway interface {
	// ListTables 取得全部桌子狀態快照，classificationID 為 nil 時不過濾
	ListTables(ctx context.Context, classificationID *int) ([]model.Table, error)

	// GetPendingOrder 取得桌子待結訂單，不存在時回傳 (nil, nil)
	GetPendingOrder(ctx context.Context, tableID int) (*model.PendingOrder, error)

	// SaveOrder 以整份內容覆寫桌子的待結訂單
	SaveOrder(ctx context.Context, req model.SaveOrderRequest) error

	// CombineTables 將多張桌子的待結訂單併入起始桌，品項如何合併由遠端決定
	CombineTables(ctx context.Context, originTableID int, tablesToMerge []int) error

	// MoveOrder 整份訂單移到另一張桌子，目的桌已佔用時回傳 ErrConflict
	MoveOrder(ctx context.Context, originTableID, destinationTableID int) error

	DeletePendingOrder(ctx context.Context, tableID int) error

	AssignCustomer(ctx context.Context, tableID, customerID int, note string) error

	// FinalizeInvoice 結帳開立發票，回傳遠端成功訊息
	FinalizeInvoice(ctx context.Context, req model.InvoiceRequest) (string, error)

	// 商品目錄，供購物車選品使用
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]model.ProductCategory, error)
}

// apiResponse 上游統一回應信封
// success=false 是唯一權威的失敗訊號，與HTTP狀態碼無關
// success=true 時 data 仍可能缺席，視為空結果
type apiResponse struct {
	Success bool            `json:"success"`
	Tipo    string          `json:"tipo"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
