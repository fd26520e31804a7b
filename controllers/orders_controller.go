package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/services"
)

func CreateOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		var body dto.CreateOrderDTO
		if !bindJSON(c, &body) {
			return
		}

		order, err := orders.CreateOrder(c.Request.Context(), user.ID.Hex(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
	}
}

func GetOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": list})
	}
}

func SendStripePublishableKey(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"publishablekey": orders.PublishableKey()})
	}
}

func NewPayment(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.NewPaymentDTO
		if !bindJSON(c, &body) {
			return
		}

		secret, err := orders.NewPayment(c.Request.Context(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "client_secret": secret})
	}
}
