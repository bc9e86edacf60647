package products

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/smartsales365/admin-console/apiclient"
)

const (
	pathProducts   = "/producto/productos/"
	pathCategories = "/producto/categorias/"
	pathBrands     = "/producto/marcas/"
)

// ListParams selects a page of products. Zero values are not sent.
type ListParams struct {
	Page     int
	Search   string
	Category int
	Brand    int
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Active   *bool

	// Discounted keeps only products with (true) or without (false) a
	// discount.
	Discounted *bool
}

func (p ListParams) filters() map[string]string {
	f := map[string]string{}
	if p.Category > 0 {
		f["categoria"] = strconv.Itoa(p.Category)
	}
	if p.Brand > 0 {
		f["marca"] = strconv.Itoa(p.Brand)
	}
	if p.PriceMin != nil {
		f["precio_min"] = p.PriceMin.String()
	}
	if p.PriceMax != nil {
		f["precio_max"] = p.PriceMax.String()
	}
	if p.Active != nil {
		f["activo"] = strconv.FormatBool(*p.Active)
	}
	if p.Discounted != nil {
		f["con_descuento"] = strconv.FormatBool(*p.Discounted)
	}
	return f
}

type Service struct {
	api apiclient.API
}

func NewService(api apiclient.API) *Service {
	return &Service{api: api}
}

func productPath(id int) string {
	return fmt.Sprintf("%s%d/", pathProducts, id)
}

func (s *Service) List(ctx context.Context, params ListParams) (apiclient.Page[Product], error) {
	var page apiclient.Page[Product]
	if err := s.api.Get(ctx, pathProducts, apiclient.PageQuery(params.Page, params.Search, params.filters()), &page); err != nil {
		return apiclient.Page[Product]{}, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Product, error) {
	var p Product
	if err := s.api.Get(ctx, productPath(id), nil, &p); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Product, error) {
	var p Product
	if err := s.api.Post(ctx, pathProducts, in, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, id int, in Input) (*Product, error) {
	var p Product
	if err := s.api.Put(ctx, productPath(id), in, &p); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, productPath(id), nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func (s *Service) SetActive(ctx context.Context, id int, active bool) (*Product, error) {
	var p Product
	if err := s.api.Patch(ctx, productPath(id), map[string]bool{"activo": active}, &p); err != nil {
		return nil, fmt.Errorf("set product %d active=%t: %w", id, active, err)
	}
	return &p, nil
}

// CatalogService reads the categories and brands used to filter products.
type CatalogService struct {
	api apiclient.API
}

func NewCatalogService(api apiclient.API) *CatalogService {
	return &CatalogService{api: api}
}

func (s *CatalogService) Categories(ctx context.Context) ([]Category, error) {
	var categories apiclient.List[Category]
	if err := s.api.Get(ctx, pathCategories, nil, &categories); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) Brands(ctx context.Context) ([]Brand, error) {
	var brands apiclient.List[Brand]
	if err := s.api.Get(ctx, pathBrands, nil, &brands); err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}
