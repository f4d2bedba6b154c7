package controller

import (
	"errors"
	"net/http"

	dto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type OrderController struct {
	orderService *service.OrderService
}

func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	var req dto.CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.ProductID == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "product_id is required"})
	}

	orderID, err := c.orderService.CreateOrder(ctx.Request().Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "product not found"})
		}
		if errors.Is(err, service.ErrInvalidAmount) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "order amount must be positive"})
		}
		if errors.Is(err, service.ErrUpstreamUnavailable) {
			logrus.WithError(err).Warn("Payment gateway unavailable")
			return ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "payment gateway unavailable, retry later"})
		}
		logrus.WithError(err).Error("Create order failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("order_id", orderID).Info("Order created")
	return ctx.JSON(http.StatusOK, dto.CreateOrderResponse{OrderID: orderID})
}

func (c *OrderController) VerifyPayment(ctx echo.Context) error {
	var req dto.VerifyPaymentRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "razorpay_order_id, razorpay_payment_id and razorpay_signature are required"})
	}

	verified, err := c.orderService.VerifyPayment(
		ctx.Request().Context(),
		req.RazorpayOrderID,
		req.RazorpayPaymentID,
		req.RazorpaySignature,
		req.Email,
	)
	if err != nil {
		logrus.WithError(err).WithField("order_id", req.RazorpayOrderID).Error("Verify payment failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	// An invalid signature is reported as a failure status, not an error,
	// so the client can retry the checkout.
	if !verified {
		return ctx.JSON(http.StatusOK, dto.VerifyPaymentResponse{Status: "failure"})
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   req.RazorpayOrderID,
		"payment_id": req.RazorpayPaymentID,
	}).Info("Payment verified")
	return ctx.JSON(http.StatusOK, dto.VerifyPaymentResponse{
		Status:    "success",
		PaymentID: req.RazorpayPaymentID,
	})
}

func (c *OrderController) FetchOrders(ctx echo.Context) error {
	email, ok := ctx.Get("user_email").(string)
	if !ok || email == "" {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthenticated"})
	}

	orders, err := c.orderService.FetchOrders(ctx.Request().Context(), email)
	if err != nil {
		logrus.WithError(err).Error("Fetch orders failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	response := dto.OrdersResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, order := range orders {
		item := dto.OrderResponse{
			OrderID: order.OrderID,
			Email:   order.Email,
			Status:  order.Status,
		}
		if order.PaymentID.Valid {
			item.PaymentID = order.PaymentID.String
		}
		response.Orders = append(response.Orders, item)
	}
	return ctx.JSON(http.StatusOK, response)
}
