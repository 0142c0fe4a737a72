package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	OrderServiceName = "tablewise.v1.OrderService"
	MenuServiceName  = "tablewise.v1.MenuService"
	AuthServiceName  = "tablewise.v1.AuthService"
)

const (
	OrderServicePlaceOrderProcedure     = "/tablewise.v1.OrderService/PlaceOrder"
	OrderServiceConfirmOrderProcedure   = "/tablewise.v1.OrderService/ConfirmOrder"
	OrderServiceUnconfirmOrderProcedure = "/tablewise.v1.OrderService/UnconfirmOrder"
	OrderServiceRecordPaymentProcedure  = "/tablewise.v1.OrderService/RecordPayment"
	OrderServiceCloseTableProcedure     = "/tablewise.v1.OrderService/CloseTable"
	OrderServiceListTablesProcedure     = "/tablewise.v1.OrderService/ListTables"
	OrderServiceListSalesProcedure      = "/tablewise.v1.OrderService/ListSales"

	MenuServiceListMenuProcedure      = "/tablewise.v1.MenuService/ListMenu"
	MenuServiceAddProductProcedure    = "/tablewise.v1.MenuService/AddProduct"
	MenuServiceDeleteProductProcedure = "/tablewise.v1.MenuService/DeleteProduct"

	AuthServiceLoginProcedure = "/tablewise.v1.AuthService/Login"
)

// AdminProcedures lists the procedures that require an admin token.
var AdminProcedures = []string{
	OrderServiceListTablesProcedure,
	OrderServiceListSalesProcedure,
	MenuServiceAddProductProcedure,
	MenuServiceDeleteProductProcedure,
}

// OrderServiceHandler is implemented by the order lifecycle service.
type OrderServiceHandler interface {
	PlaceOrder(context.Context, *connect.Request[PlaceOrderRequest]) (*connect.Response[PlaceOrderResponse], error)
	ConfirmOrder(context.Context, *connect.Request[ConfirmOrderRequest]) (*connect.Response[ConfirmOrderResponse], error)
	UnconfirmOrder(context.Context, *connect.Request[UnconfirmOrderRequest]) (*connect.Response[UnconfirmOrderResponse], error)
	RecordPayment(context.Context, *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error)
	CloseTable(context.Context, *connect.Request[CloseTableRequest]) (*connect.Response[CloseTableResponse], error)
	ListTables(context.Context, *connect.Request[ListTablesRequest]) (*connect.Response[ListTablesResponse], error)
	ListSales(context.Context, *connect.Request[ListSalesRequest]) (*connect.Response[ListSalesResponse], error)
}

// MenuServiceHandler is implemented by the menu service.
type MenuServiceHandler interface {
	ListMenu(context.Context, *connect.Request[ListMenuRequest]) (*connect.Response[ListMenuResponse], error)
	AddProduct(context.Context, *connect.Request[AddProductRequest]) (*connect.Response[AddProductResponse], error)
	DeleteProduct(context.Context, *connect.Request[DeleteProductRequest]) (*connect.Response[DeleteProductResponse], error)
}

// AuthServiceHandler is implemented by the admin login service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// NewOrderServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewOrderServiceHandler(svc OrderServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)

	mux := http.NewServeMux()
	mux.Handle(OrderServicePlaceOrderProcedure, connect.NewUnaryHandler(OrderServicePlaceOrderProcedure, svc.PlaceOrder, opts...))
	mux.Handle(OrderServiceConfirmOrderProcedure, connect.NewUnaryHandler(OrderServiceConfirmOrderProcedure, svc.ConfirmOrder, opts...))
	mux.Handle(OrderServiceUnconfirmOrderProcedure, connect.NewUnaryHandler(OrderServiceUnconfirmOrderProcedure, svc.UnconfirmOrder, opts...))
	mux.Handle(OrderServiceRecordPaymentProcedure, connect.NewUnaryHandler(OrderServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(OrderServiceCloseTableProcedure, connect.NewUnaryHandler(OrderServiceCloseTableProcedure, svc.CloseTable, opts...))
	mux.Handle(OrderServiceListTablesProcedure, connect.NewUnaryHandler(OrderServiceListTablesProcedure, svc.ListTables, opts...))
	mux.Handle(OrderServiceListSalesProcedure, connect.NewUnaryHandler(OrderServiceListSalesProcedure, svc.ListSales, opts...))

	return "/" + OrderServiceName + "/", mux
}

// NewMenuServiceHandler builds an HTTP handler from the service implementation.
func NewMenuServiceHandler(svc MenuServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)

	mux := http.NewServeMux()
	mux.Handle(MenuServiceListMenuProcedure, connect.NewUnaryHandler(MenuServiceListMenuProcedure, svc.ListMenu, opts...))
	mux.Handle(MenuServiceAddProductProcedure, connect.NewUnaryHandler(MenuServiceAddProductProcedure, svc.AddProduct, opts...))
	mux.Handle(MenuServiceDeleteProductProcedure, connect.NewUnaryHandler(MenuServiceDeleteProductProcedure, svc.DeleteProduct, opts...))

	return "/" + MenuServiceName + "/", mux
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)

	mux := http.NewServeMux()
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))

	return "/" + AuthServiceName + "/", mux
}

// OrderServiceClient is a client for tablewise.v1.OrderService.
type OrderServiceClient struct {
	placeOrder     *connect.Client[PlaceOrderRequest, PlaceOrderResponse]
	confirmOrder   *connect.Client[ConfirmOrderRequest, ConfirmOrderResponse]
	unconfirmOrder *connect.Client[UnconfirmOrderRequest, UnconfirmOrderResponse]
	recordPayment  *connect.Client[RecordPaymentRequest, RecordPaymentResponse]
	closeTable     *connect.Client[CloseTableRequest, CloseTableResponse]
	listTables     *connect.Client[ListTablesRequest, ListTablesResponse]
	listSales      *connect.Client[ListSalesRequest, ListSalesResponse]
}

// NewOrderServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewOrderServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *OrderServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)

	return &OrderServiceClient{
		placeOrder:     connect.NewClient[PlaceOrderRequest, PlaceOrderResponse](httpClient, baseURL+OrderServicePlaceOrderProcedure, opts...),
		confirmOrder:   connect.NewClient[ConfirmOrderRequest, ConfirmOrderResponse](httpClient, baseURL+OrderServiceConfirmOrderProcedure, opts...),
		unconfirmOrder: connect.NewClient[UnconfirmOrderRequest, UnconfirmOrderResponse](httpClient, baseURL+OrderServiceUnconfirmOrderProcedure, opts...),
		recordPayment:  connect.NewClient[RecordPaymentRequest, RecordPaymentResponse](httpClient, baseURL+OrderServiceRecordPaymentProcedure, opts...),
		closeTable:     connect.NewClient[CloseTableRequest, CloseTableResponse](httpClient, baseURL+OrderServiceCloseTableProcedure, opts...),
		listTables:     connect.NewClient[ListTablesRequest, ListTablesResponse](httpClient, baseURL+OrderServiceListTablesProcedure, opts...),
		listSales:      connect.NewClient[ListSalesRequest, ListSalesResponse](httpClient, baseURL+OrderServiceListSalesProcedure, opts...),
	}
}

func (c *OrderServiceClient) PlaceOrder(ctx context.Context, req *connect.Request[PlaceOrderRequest]) (*connect.Response[PlaceOrderResponse], error) {
	return c.placeOrder.CallUnary(ctx, req)
}

func (c *OrderServiceClient) ConfirmOrder(ctx context.Context, req *connect.Request[ConfirmOrderRequest]) (*connect.Response[ConfirmOrderResponse], error) {
	return c.confirmOrder.CallUnary(ctx, req)
}

func (c *OrderServiceClient) UnconfirmOrder(ctx context.Context, req *connect.Request[UnconfirmOrderRequest]) (*connect.Response[UnconfirmOrderResponse], error) {
	return c.unconfirmOrder.CallUnary(ctx, req)
}

func (c *OrderServiceClient) RecordPayment(ctx context.Context, req *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *OrderServiceClient) CloseTable(ctx context.Context, req *connect.Request[CloseTableRequest]) (*connect.Response[CloseTableResponse], error) {
	return c.closeTable.CallUnary(ctx, req)
}

func (c *OrderServiceClient) ListTables(ctx context.Context, req *connect.Request[ListTablesRequest]) (*connect.Response[ListTablesResponse], error) {
	return c.listTables.CallUnary(ctx, req)
}

func (c *OrderServiceClient) ListSales(ctx context.Context, req *connect.Request[ListSalesRequest]) (*connect.Response[ListSalesResponse], error) {
	return c.listSales.CallUnary(ctx, req)
}

// MenuServiceClient is a client for tablewise.v1.MenuService.
type MenuServiceClient struct {
	listMenu      *connect.Client[ListMenuRequest, ListMenuResponse]
	addProduct    *connect.Client[AddProductRequest, AddProductResponse]
	deleteProduct *connect.Client[DeleteProductRequest, DeleteProductResponse]
}

// NewMenuServiceClient constructs a client for the service at baseURL.
func NewMenuServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MenuServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)

	return &MenuServiceClient{
		listMenu:      connect.NewClient[ListMenuRequest, ListMenuResponse](httpClient, baseURL+MenuServiceListMenuProcedure, opts...),
		addProduct:    connect.NewClient[AddProductRequest, AddProductResponse](httpClient, baseURL+MenuServiceAddProductProcedure, opts...),
		deleteProduct: connect.NewClient[DeleteProductRequest, DeleteProductResponse](httpClient, baseURL+MenuServiceDeleteProductProcedure, opts...),
	}
}

func (c *MenuServiceClient) ListMenu(ctx context.Context, req *connect.Request[ListMenuRequest]) (*connect.Response[ListMenuResponse], error) {
	return c.listMenu.CallUnary(ctx, req)
}

func (c *MenuServiceClient) AddProduct(ctx context.Context, req *connect.Request[AddProductRequest]) (*connect.Response[AddProductResponse], error) {
	return c.addProduct.CallUnary(ctx, req)
}

func (c *MenuServiceClient) DeleteProduct(ctx context.Context, req *connect.Request[DeleteProductRequest]) (*connect.Response[DeleteProductResponse], error) {
	return c.deleteProduct.CallUnary(ctx, req)
}

// AuthServiceClient is a client for tablewise.v1.AuthService.
type AuthServiceClient struct {
	login *connect.Client[LoginRequest, LoginResponse]
}

// NewAuthServiceClient constructs a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &AuthServiceClient{
		login: connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, clientOptions(opts)...),
	}
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}
