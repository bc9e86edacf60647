package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue item as the backend returns it. Money values are
// decimals; the backend serialises them as strings.
type Product struct {
	ID                 int              `json:"id"`
	Name               string           `json:"nombre"`
	Description        string           `json:"descripcion,omitempty"`
	Price              decimal.Decimal  `json:"precio"`
	OriginalPrice      *decimal.Decimal `json:"precio_original,omitempty"`
	HasDiscount        bool             `json:"tiene_descuento,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"porcentaje_descuento,omitempty"`
	Category           *int             `json:"categoria,omitempty"`
	CategoryName       string           `json:"categoria_nombre,omitempty"`
	Brand              *int             `json:"marca,omitempty"`
	BrandName          string           `json:"marca_nombre,omitempty"`
	MinimumStock       int              `json:"stock_minimo,omitempty"`
	Active             *bool            `json:"activo,omitempty"`
	Created            *time.Time       `json:"creado,omitempty"`
}

const currency = "Bs"

// PriceLabel formats the price the way the product screens show it.
func (p Product) PriceLabel() string {
	return currency + " " + p.Price.StringFixed(2)
}

// OriginalPriceLabel is empty when the product has no original price.
func (p Product) OriginalPriceLabel() string {
	if p.OriginalPrice == nil {
		return ""
	}
	return currency + " " + p.OriginalPrice.StringFixed(2)
}

func (p Product) ActiveLabel() string {
	switch {
	case p.Active == nil:
		return "Desconocido"
	case *p.Active:
		return "Activo"
	default:
		return "Inactivo"
	}
}

// ShortName truncates the name for table cells.
func (p Product) ShortName(max int) string {
	runes := []rune(p.Name)
	if len(runes) <= max {
		return p.Name
	}
	return string(runes[:max]) + "..."
}

// Input is the payload for creating or updating a product.
type Input struct {
	Name          string           `json:"nombre"`
	Description   string           `json:"descripcion,omitempty"`
	Price         decimal.Decimal  `json:"precio"`
	OriginalPrice *decimal.Decimal `json:"precio_original,omitempty"`
	Category      int              `json:"categoria"`
	Brand         int              `json:"marca"`
	MinimumStock  int              `json:"stock_minimo"`
	Active        *bool            `json:"activo,omitempty"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

type Brand struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}
