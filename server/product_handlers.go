package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/products"
)

const productNameWidth = 30

type productRow struct {
	ID            int
	Name          string
	FullName      string
	Price         string
	OriginalPrice string
	Discount      string
	Brand         string
	Category      string
	MinimumStock  int
	Status        string
	StatusClass   string
	ToggleTo      string
	ToggleLabel   string
	ToggleURL     string
	DeleteURL     string
}

func newProductRow(p products.Product) productRow {
	row := productRow{
		ID:            p.ID,
		Name:          p.ShortName(productNameWidth),
		FullName:      p.Name,
		Price:         p.PriceLabel(),
		OriginalPrice: p.OriginalPriceLabel(),
		Brand:         p.BrandName,
		Category:      p.CategoryName,
		MinimumStock:  p.MinimumStock,
		Status:        p.ActiveLabel(),
		ToggleURL:     routeProductTogglePrefix + strconv.Itoa(p.ID),
		DeleteURL:     routeProductDeletePrefix + strconv.Itoa(p.ID),
	}
	if p.HasDiscount && p.DiscountPercentage != nil {
		row.Discount = p.DiscountPercentage.StringFixed(2) + "%"
	}
	switch {
	case p.Active == nil:
		row.StatusClass, row.ToggleTo, row.ToggleLabel = "unknown", "true", "Activar"
	case *p.Active:
		row.StatusClass, row.ToggleTo, row.ToggleLabel = "active", "false", "Desactivar"
	default:
		row.StatusClass, row.ToggleTo, row.ToggleLabel = "inactive", "true", "Activar"
	}
	return row
}

type productFilters struct {
	Category   string
	Brand      string
	PriceMin   string
	PriceMax   string
	Active     string
	Discounted string
}

type productsListData struct {
	Search     string
	Filters    productFilters
	Categories []option
	Brands     []option
	States     []option
	Discounts  []option
	Rows       []productRow
	Pager      pager
	ExportURL  string
	ReturnURL  string
	Warnings   []string
}

// productsListParams reads the list filters. Values the backend could not
// use are dropped and reported.
func productsListParams(query url.Values) (products.ListParams, productFilters, []string) {
	f := productFilters{
		Category:   strings.TrimSpace(query.Get("categoria")),
		Brand:      strings.TrimSpace(query.Get("marca")),
		PriceMin:   strings.TrimSpace(query.Get("precio_min")),
		PriceMax:   strings.TrimSpace(query.Get("precio_max")),
		Active:     strings.TrimSpace(query.Get("activo")),
		Discounted: strings.TrimSpace(query.Get("con_descuento")),
	}
	params := products.ListParams{
		Page:       queryPage(query),
		Search:     strings.TrimSpace(query.Get("search")),
		Active:     parseTriState(f.Active),
		Discounted: parseTriState(f.Discounted),
	}
	params.Category, _ = strconv.Atoi(f.Category)
	params.Brand, _ = strconv.Atoi(f.Brand)

	var warnings []string
	if f.PriceMin != "" {
		if d, err := decimal.NewFromString(f.PriceMin); err == nil {
			params.PriceMin = &d
		} else {
			warnings = append(warnings, "Precio mínimo inválido")
		}
	}
	if f.PriceMax != "" {
		if d, err := decimal.NewFromString(f.PriceMax); err == nil {
			params.PriceMax = &d
		} else {
			warnings = append(warnings, "Precio máximo inválido")
		}
	}
	return params, f, warnings
}

// catalogOptions loads the category and brand selects. Failures only cost
// the filter, not the page, except a 401, which is returned.
func (s *Server) catalogOptions(ctx context.Context, f productFilters) ([]option, []option, []string, error) {
	var categories, brands []option
	var warnings []string

	categoryList, err := s.catalog.Categories(ctx)
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return nil, nil, nil, err
	case err != nil:
		log.Warn().Err(err).Msg("failed to load categories")
		warnings = append(warnings, "Error al cargar las categorías")
	}
	for _, c := range categoryList {
		categories = append(categories, option{Value: strconv.Itoa(c.ID), Label: c.Name})
	}

	brandList, err := s.catalog.Brands(ctx)
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return nil, nil, nil, err
	case err != nil:
		log.Warn().Err(err).Msg("failed to load brands")
		warnings = append(warnings, "Error al cargar las marcas")
	}
	for _, b := range brandList {
		brands = append(brands, option{Value: strconv.Itoa(b.ID), Label: b.Name})
	}

	return markSelected(categories, f.Category), markSelected(brands, f.Brand), warnings, nil
}

// ProductsListHandler renders the paginated, filterable products table.
func (s *Server) ProductsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params, filters, warnings := productsListParams(query)

		page, err := s.products.List(r.Context(), params)
		if err != nil {
			s.renderBackendError(w, r, err, "products", "Error al cargar los productos")
			return
		}

		categories, brands, catalogWarnings, err := s.catalogOptions(r.Context(), filters)
		if err != nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		data := productsListData{
			Search:     params.Search,
			Filters:    filters,
			Categories: categories,
			Brands:     brands,
			States:     statusOptions(filters.Active),
			Discounts: markSelected([]option{
				{Value: "true", Label: "Con descuento"},
				{Value: "false", Label: "Sin descuento"},
			}, filters.Discounted),
			Pager:     newPager(RouteProducts, query, params.Page, page.Count, page.HasPrevious(), page.HasNext()),
			ExportURL: exportURL(RouteProductsExport, query),
			ReturnURL: r.URL.RequestURI(),
			Warnings:  append(warnings, catalogWarnings...),
		}
		for _, p := range page.Results {
			data.Rows = append(data.Rows, newProductRow(p))
		}
		s.renderAdminPage(w, r, http.StatusOK, "products", "Productos", pageProducts, data)
	}
}

// ProductsExportHandler downloads the current page of products as CSV.
func (s *Server) ProductsExportHandler() http.HandlerFunc {
	header := []string{"ID", "Nombre", "Descripción", "Precio", "Precio Original", "Tiene Descuento", "% Descuento", "Marca", "Categoría", "Stock Mínimo", "Estado", "Fecha Creación"}

	return func(w http.ResponseWriter, r *http.Request) {
		params, _, _ := productsListParams(r.URL.Query())
		page, err := s.products.List(r.Context(), params)
		if err != nil {
			s.renderBackendError(w, r, err, "products", "Error al exportar los productos")
			return
		}

		rows := make([][]string, 0, len(page.Results))
		for _, p := range page.Results {
			original, discount, created := "N/A", "N/A", ""
			if p.OriginalPrice != nil {
				original = p.OriginalPriceLabel()
			}
			if p.DiscountPercentage != nil {
				discount = p.DiscountPercentage.String() + "%"
			}
			if p.Created != nil {
				created = p.Created.Format("02/01/2006")
			}
			hasDiscount := "No"
			if p.HasDiscount {
				hasDiscount = "Sí"
			}
			rows = append(rows, []string{
				strconv.Itoa(p.ID), p.Name, p.Description, p.PriceLabel(), original, hasDiscount, discount,
				p.BrandName, p.CategoryName, strconv.Itoa(p.MinimumStock), p.ActiveLabel(), created,
			})
		}
		if err := writeCSV(w, "productos", header, rows); err != nil {
			log.Error().Err(err).Msg("failed to write products export")
		}
	}
}

func (s *Server) ProductToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		back := returnPath(r, RouteProducts)
		active := parseTriState(r.FormValue("activo"))
		if active == nil {
			redirectWithError(w, r, back, "Estado inválido")
			return
		}
		if _, err := s.products.SetActive(r.Context(), id, *active); err != nil {
			s.handleBackendError(w, r, err, back, "Error al cambiar el estado del producto")
			return
		}
		msg := "Producto desactivado"
		if *active {
			msg = "Producto activado"
		}
		redirectWithMessage(w, r, back, msg)
	}
}

func (s *Server) ProductDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		back := returnPath(r, RouteProducts)
		if err := s.products.Delete(r.Context(), id); err != nil {
			s.handleBackendError(w, r, err, back, "Error al eliminar el producto")
			return
		}
		redirectWithMessage(w, r, back, "Producto eliminado")
	}
}
