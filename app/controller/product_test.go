package controller_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/vibast-solutions/ms-go-shop/app/controller"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

const (
	insertProductQuery = `(?s)INSERT INTO products \(product_id, title, description, price, quantity_available\)\s+VALUES \(\?, \?, \?, \?, \?\)`
	listProductsQuery  = `(?s)SELECT id, product_id, title, description, price, quantity_available\s+FROM products ORDER BY id`
)

func newProductControllerWithMock(t *testing.T) (*controller.ProductController, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	productService := service.NewProductService(repository.NewProductRepository(db))
	return controller.NewProductController(productService), mock, func() { _ = db.Close() }
}

func TestAddProduct_Success(t *testing.T) {
	productController, mock, cleanup := newProductControllerWithMock(t)
	defer cleanup()

	mock.ExpectExec(insertProductQuery).
		WithArgs(sqlmock.AnyArg(), "Keyboard", "Clicky", int64(149900), int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req, rec := newJSONRequest(t, http.MethodPost, "/add-product", map[string]any{
		"title":              "Keyboard",
		"description":        "Clicky",
		"price":              149900,
		"quantity_available": 5,
	})
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := productController.AddProduct(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if body["title"] != "Keyboard" || body["product_id"] == "" {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddProduct_Validation(t *testing.T) {
	productController, _, cleanup := newProductControllerWithMock(t)
	defer cleanup()

	e := echo.New()
	for name, payload := range map[string]map[string]any{
		"missing title":     {"price": 100, "quantity_available": 1},
		"negative quantity": {"title": "Keyboard", "price": 100, "quantity_available": -1},
		"zero price":        {"title": "Keyboard", "price": 0, "quantity_available": 1},
	} {
		req, rec := newJSONRequest(t, http.MethodPost, "/add-product", payload)
		ctx := e.NewContext(req, rec)

		if err := productController.AddProduct(ctx); err != nil {
			t.Fatalf("%s: handler error: %v", name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", name, rec.Code)
		}
	}
}

func TestListProducts_EmptyCatalog(t *testing.T) {
	productController, mock, cleanup := newProductControllerWithMock(t)
	defer cleanup()

	mock.ExpectQuery(listProductsQuery).
		WillReturnRows(sqlmock.NewRows(productColumns))

	req, rec := newJSONRequest(t, http.MethodGet, "/get-products", nil)
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := productController.ListProducts(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body []any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a json array, got %s", rec.Body.String())
	}
	if len(body) != 0 {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestListProducts_ReturnsCatalog(t *testing.T) {
	productController, mock, cleanup := newProductControllerWithMock(t)
	defer cleanup()

	mock.ExpectQuery(listProductsQuery).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(1, "prod-1", "Keyboard", "Clicky", 149900, 5).
			AddRow(2, "prod-2", "Mouse", "", 59900, 12))

	req, rec := newJSONRequest(t, http.MethodGet, "/get-products", nil)
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := productController.ListProducts(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if len(body) != 2 || body[1]["title"] != "Mouse" {
		t.Fatalf("unexpected catalog: %s", rec.Body.String())
	}
}
