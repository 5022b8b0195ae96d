package model

import (
	"github.com/shopspring/decimal"
)

// 付款方式代碼（上游定義）
const (
	PaymentMethodCash     int = 1 // 現金，唯一會找零的方式
	PaymentMethodCard     int = 2 // 信用卡
	PaymentMethodTransfer int = 3 // 轉帳
	PaymentMethodCheck    int = 4 // 支票
)

func IsCashMethod(methodID int) bool {
	return methodID == PaymentMethodCash
}

// Payment 單筆付款
// AmountApplied 為實際折抵金額，現金以外 AmountApplied == AmountTendered 且 Change 為零
type Payment struct {
	MethodID       int             `json:"MetodoPago"`
	AmountTendered decimal.Decimal `json:"MontoRecibido"`
	AmountApplied  decimal.Decimal `json:"Monto"`
	Change         decimal.Decimal `json:"Cambio"`
	Reference      *string         `json:"Referencia"`
}

// InvoiceRequest 結帳請求，送出成功後來源購物車即作廢
type InvoiceRequest struct {
	TableID  int             `json:"CodigoMesa"`
	Tip      decimal.Decimal `json:"Propina"`
	Payments []Payment       `json:"Pagos"`
}

type CombineTablesRequest struct {
	OriginTableID int   `json:"CodigoMesaOrigen"`
	TablesToMerge []int `json:"MesasAgregar"`
}

type MoveOrderRequest struct {
	OriginTableID      int `json:"CodigoMesaOrigen"`
	DestinationTableID int `json:"CodigoMesaDestino"`
}

type DeletePendingOrderRequest struct {
	TableID int `json:"CodigoMesa"`
}

type AssignCustomerRequest struct {
	TableID    int    `json:"CodigoMesa"`
	CustomerID int    `json:"CodigoCliente"`
	Note       string `json:"Nota"`
}
