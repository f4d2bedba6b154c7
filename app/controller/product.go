package controller

import (
	"errors"
	"net/http"

	dto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

func (c *ProductController) AddProduct(ctx echo.Context) error {
	var req dto.AddProductRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Title == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "title is required"})
	}
	if req.QuantityAvailable < 0 {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "quantity_available must not be negative"})
	}

	product, err := c.productService.AddProduct(ctx.Request().Context(), req.Title, req.Description, req.Price, req.QuantityAvailable)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "price must be positive"})
		}
		logrus.WithError(err).Error("Add product failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("product_id", product.ProductID).Info("Product added")
	return ctx.JSON(http.StatusCreated, publicProduct(product))
}

func (c *ProductController) ListProducts(ctx echo.Context) error {
	products, err := c.productService.ListProducts(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("List products failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	response := make([]dto.ProductResponse, 0, len(products))
	for _, product := range products {
		response = append(response, publicProduct(product))
	}
	return ctx.JSON(http.StatusOK, response)
}

func publicProduct(product *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ProductID:         product.ProductID,
		Title:             product.Title,
		Description:       product.Description,
		Price:             product.Price,
		QuantityAvailable: product.QuantityAvailable,
	}
}
