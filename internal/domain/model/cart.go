package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// 上游API的金額一律是JSON數字，不是字串
	decimal.MarshalJSONWithoutQuotes = true
}

// AttentionType 服務方式，值為上游API定義的代碼
type AttentionType string

const (
	AttentionTable    AttentionType = "MESA"       // 內用
	AttentionCounter  AttentionType = "VENTANILLA" // 櫃檯
	AttentionDelivery AttentionType = "DOMICILIO"  // 外送
)

type CartError error

var ErrInvalidQuantity CartError = errors.New("quantity must be greater than zero")

// OrderLine 購物車內單一品項
// 同一個 ProductID 在一台購物車內最多一列，重複加入時合併數量
type OrderLine struct {
	ProductID   int             `json:"CodigoProducto"`
	ProductName string          `json:"NombreProducto"`
	UnitPrice   decimal.Decimal `json:"PrecioUnitario"`
	Quantity    int             `json:"Cantidad"`
	Note        string          `json:"Nota,omitempty"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderCart 單一桌子的本地購物車
// 所有操作皆為同步本地操作，不做任何網路IO
type OrderCart struct {
	TableID       int
	AttentionType AttentionType
	lines         []OrderLine
}

func NewOrderCart(tableID int) *OrderCart {
	return &OrderCart{
		TableID:       tableID,
		AttentionType: AttentionTable,
	}
}

// NewOrderCartFromPending 由遠端待結訂單還原購物車
// 遠端資料可能同一商品有多列，還原時依 ProductID 合併
func NewOrderCartFromPending(tableID int, pending *PendingOrder) *OrderCart {
	cart := NewOrderCart(tableID)
	if pending == nil {
		return cart
	}
	if pending.AttentionType != "" {
		cart.AttentionType = pending.AttentionType
	}
	for _, line := range pending.Products {
		if line.Quantity <= 0 {
			continue
		}
		if existing := cart.find(line.ProductID); existing != nil {
			existing.Quantity += line.Quantity
			continue
		}
		cart.lines = append(cart.lines, line)
	}
	return cart
}

func (c *OrderCart) find(productID int) *OrderLine {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return &c.lines[i]
		}
	}
	return nil
}

// AddLine 加入商品
// 已存在同商品時增加數量，不新增重複列
func (c *OrderCart) AddLine(product Product, quantity int, note string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if existing := c.find(product.ProductID); existing != nil {
		existing.Quantity += quantity
		return nil
	}
	c.lines = append(c.lines, OrderLine{
		ProductID:   product.ProductID,
		ProductName: product.Name,
		UnitPrice:   product.SalePrice,
		Quantity:    quantity,
		Note:        note,
	})
	return nil
}

// SetQuantity 數量小於等於0時移除該列，商品不存在時不動作
func (c *OrderCart) SetQuantity(productID int, quantity int) {
	if quantity <= 0 {
		c.RemoveLine(productID)
		return
	}
	if existing := c.find(productID); existing != nil {
		existing.Quantity = quantity
	}
}

// RemoveLine 商品不存在時不動作
func (c *OrderCart) RemoveLine(productID int) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetNote 修改指定品項備註，商品不存在時不動作
func (c *OrderCart) SetNote(productID int, note string) {
	if existing := c.find(productID); existing != nil {
		existing.Note = note
	}
}

// Lines 回傳品項複本，呼叫端修改不影響購物車
func (c *OrderCart) Lines() []OrderLine {
	lines := make([]OrderLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *OrderCart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total 每次呼叫重新計算，不快取
func (c *OrderCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Clear 清空購物車，儲存或結帳成功後呼叫
func (c *OrderCart) Clear() {
	c.lines = nil
}

// ToSaveRequest 轉成上游儲存訂單的wire格式
func (c *OrderCart) ToSaveRequest() SaveOrderRequest {
	products := make([]SaveOrderLine, 0, len(c.lines))
	for _, line := range c.lines {
		products = append(products, SaveOrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Note:      line.Note,
		})
	}
	return SaveOrderRequest{
		TableID:       c.TableID,
		AttentionType: c.AttentionType,
		Products:      products,
	}
}

// PendingOrder 遠端回傳的桌子待結訂單
type PendingOrder struct {
	TableID       int           `json:"CodigoMesa"`
	AttentionType AttentionType `json:"TipoAtencion,omitempty"`
	Products      []OrderLine   `json:"Productos"`
}

type SaveOrderLine struct {
	ProductID int             `json:"CodigoProducto"`
	Quantity  int             `json:"Cantidad"`
	UnitPrice decimal.Decimal `json:"PrecioUnitario"`
	Note      string          `json:"Nota,omitempty"`
}

type SaveOrderRequest struct {
	TableID       int             `json:"CodigoMesa"`
	AttentionType AttentionType   `json:"TipoAtencion"`
	Products      []SaveOrderLine `json:"Productos"`
}
