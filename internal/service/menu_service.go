package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tablewise/internal/idgen"
	"github.com/mmynk/tablewise/internal/lifecycle"
	"github.com/mmynk/tablewise/internal/middleware"
	"github.com/mmynk/tablewise/internal/models"
	"github.com/mmynk/tablewise/internal/storage"
	"github.com/mmynk/tablewise/pkg/api"
)

// Ensure MenuService implements api.MenuServiceHandler
var _ api.MenuServiceHandler = (*MenuService)(nil)

// MenuService implements the Connect MenuService.
type MenuService struct {
	store    *storage.Store
	ids      idgen.Generator
	validate *validator.Validate
}

type productInput struct {
	Name  string  `validate:"required"`
	Price float64 `validate:"gte=0"`
}

// NewMenuService creates a new MenuService with the given store.
func NewMenuService(store *storage.Store, ids idgen.Generator) *MenuService {
	return &MenuService{
		store:    store,
		ids:      ids,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ListMenu returns every product on the menu.
func (s *MenuService) ListMenu(ctx context.Context, req *connect.Request[api.ListMenuRequest]) (*connect.Response[api.ListMenuResponse], error) {
	slog.Info("ListMenu request received")

	menu := s.store.LoadMenu(ctx)

	products := make([]api.Product, len(menu))
	for i, p := range menu {
		products[i] = toAPIProduct(p)
	}

	return connect.NewResponse(&api.ListMenuResponse{Products: products}), nil
}

// AddProduct appends a product to the menu.
func (s *MenuService) AddProduct(ctx context.Context, req *connect.Request[api.AddProductRequest]) (*connect.Response[api.AddProductResponse], error) {
	slog.Info("AddProduct request received", "name", req.Msg.Name, "price", req.Msg.Price)

	if err := s.validate.Struct(productInput{Name: req.Msg.Name, Price: req.Msg.Price}); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("%w: name is required and price must not be negative", lifecycle.ErrValidation))
	}

	product := models.Product{
		ID:       s.ids.NewID(),
		Name:     req.Msg.Name,
		Price:    req.Msg.Price,
		Category: req.Msg.Category,
	}

	err := s.store.UpdateMenu(ctx, func(menu []models.Product) ([]models.Product, error) {
		return append(menu, product), nil
	})
	if err != nil {
		slog.Error("AddProduct failed", "name", product.Name, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Product added", "product_id", product.ID, "by", middleware.GetSubject(ctx))

	return connect.NewResponse(&api.AddProductResponse{Product: toAPIProduct(product)}), nil
}

// DeleteProduct removes a product from the menu by ID.
func (s *MenuService) DeleteProduct(ctx context.Context, req *connect.Request[api.DeleteProductRequest]) (*connect.Response[api.DeleteProductResponse], error) {
	id := req.Msg.ID
	slog.Info("DeleteProduct request received", "product_id", id)

	if id == "" {
		return nil, toConnectError(fmt.Errorf("%w: id is required", lifecycle.ErrValidation))
	}

	err := s.store.UpdateMenu(ctx, func(menu []models.Product) ([]models.Product, error) {
		i := slices.IndexFunc(menu, func(p models.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: product %q", lifecycle.ErrNotFound, id)
		}
		return slices.Delete(menu, i, i+1), nil
	})
	if err != nil {
		slog.Warn("DeleteProduct failed", "product_id", id, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Product deleted", "product_id", id, "by", middleware.GetSubject(ctx))

	return connect.NewResponse(&api.DeleteProductResponse{}), nil
}
