package model

import (
	"github.com/shopspring/decimal"
)

// Product 商品目錄快照，加入購物車時取 SalePrice 當單價
type Product struct {
	ProductID    int             `json:"CodigoProducto"`
	CategoryID   int             `json:"CodigoCategoriaProducto"`
	Name         string          `json:"NombreProducto"`
	ProductType  string          `json:"TipoProducto,omitempty"`
	SalePrice    decimal.Decimal `json:"PrecioVenta"`
	Status       int             `json:"Estatus"`
	ImageURL     string          `json:"ImagenUrl,omitempty"`
	CategoryName string          `json:"NombreCategoria,omitempty"`
}

type ProductCategory struct {
	CategoryID int    `json:"CodigoCategoriaProducto"`
	Name       string `json:"NombreCategoriaProducto"`
	Status     int    `json:"Estatus"`
}
