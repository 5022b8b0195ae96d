package model

import (
	"github.com/shopspring/decimal"
)

// Table 桌子即時狀態快照
// 桌子本身由配置端維護，本核心只讀不增刪
// Occupied 為衍生狀態：遠端存在待結訂單才視為佔用
type Table struct {
	TableID            int    `json:"CodigoMesa"`
	ClassificationID   int    `json:"CodigoClasificacionMesa"`
	Name               string `json:"NombreMesa"`
	Description        string `json:"Descripcion,omitempty"`
	ImageURL           string `json:"ImagenUrl,omitempty"`
	Status             int    `json:"Estatus"`
	ClassificationName string `json:"NombreClasificacion,omitempty"`

	// 以下欄位只在佔用中出現
	Occupied     bool            `json:"Ocupada"`
	RunningTotal decimal.Decimal `json:"TotalVenta"`
	OccupiedFor  string          `json:"TiempoOcupada,omitempty"`
	CustomerID   int             `json:"CodigoCliente,omitempty"`
	CustomerName string          `json:"NombreCliente,omitempty"`
	Note         string          `json:"Nota,omitempty"`
}
