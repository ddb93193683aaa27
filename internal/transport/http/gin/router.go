package httpgin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/metrics"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
	"github.com/kirinyoku/parktix/internal/service"
	"github.com/kirinyoku/parktix/internal/service/auth"
	"github.com/kirinyoku/parktix/internal/service/booking"
	"github.com/kirinyoku/parktix/internal/service/cart"
	"github.com/kirinyoku/parktix/internal/service/checkout"
	"github.com/kirinyoku/parktix/internal/service/orders"
	"github.com/kirinyoku/parktix/internal/service/payment"
	"github.com/kirinyoku/parktix/internal/service/query"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const idemLockTTL = 60 * time.Second

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	m *metrics.Metrics,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(), MetricsMiddleware(m))
	for _, mw := range middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.POST("/auth/register", handleRegister(svcs))
	r.POST("/auth/login", handleLogin(svcs))

	r.POST("/cart/add", handleAddToCart(svcs))
	r.GET("/cart", handleGetCart(svcs))
	r.POST("/cart/clear", handleClearCart(svcs))

	r.POST("/checkout", handleCheckout(svcs, idem, logger))

	r.POST("/bookings/:id/cancel", handleCancelTicket(svcs))
	r.POST("/bookings/:id/reschedule", handleReschedule(svcs))

	r.GET("/orders/by-user", handleOrdersByUser(svcs))

	r.GET("/parks/:id/availability", handleParkAvailability(svcs))

	admin := r.Group("/admin", AdminOnly(svcs.Auth))
	{
		admin.GET("/summary", handleAdminSummary(svcs))
		admin.GET("/orders", handleAdminOrders(svcs))
		admin.GET("/tickets", handleAdminTickets(svcs))
		admin.POST("/orders/:id/cancel", handleAdminCancelOrder(svcs))
		admin.POST("/bookings/:id/cancel", handleAdminCancelTicket(svcs))
		admin.POST("/bookings/:id/reschedule", handleAdminReschedule(svcs))
	}

	return r
}

// @Summary  Register a customer account
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} RegisterResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "email taken"
// @Router   /auth/register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}
		u, err := svcs.Auth.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, RegisterResponse{
			Success: true,
			Message: "Registration successful.",
			User:    toUserDTO(*u),
		})
	}
}

// @Summary  Log in and obtain a bearer token
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} ErrorResponse
// @Router   /auth/login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}
		sess, err := svcs.Auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, LoginResponse{
			Success:   true,
			Message:   "Login successful.",
			Token:     sess.Token,
			ExpiresAt: sess.ExpiresAt,
			User:      toUserDTO(sess.User),
		})
	}
}

// @Summary  Add a product to the cart
// @Param    req body  AddToCartRequest true "payload"
// @Success  200 {object} CartResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /cart/add [post]
func handleAddToCart(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}
		ct, err := svcs.Cart.AddItem(c.Request.Context(), req.UserID, req.ProductID, req.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, CartResponse{Success: true, Cart: toCartDTO(ct)})
	}
}

// @Summary  Get the cart
// @Param    userId query int true "User ID"
// @Success  200 {object} CartResponse
// @Router   /cart [get]
func handleGetCart(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseInt64Query(c, "userId")
		if !ok {
			return
		}
		ct, err := svcs.Cart.Get(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, CartResponse{Success: true, Cart: toCartDTO(ct)})
	}
}

// @Summary  Empty the cart
// @Param    req body  ClearCartRequest true "payload"
// @Success  200 {object} MessageResponse
// @Router   /cart/clear [post]
func handleClearCart(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ClearCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}
		if err := svcs.Cart.Clear(c.Request.Context(), req.UserID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Cart cleared."})
	}
}

// @Summary  Pay for a cart and issue tickets (idempotent)
// @Param    req body  CheckoutRequest true "payload"
// @Param    Idempotency-Key header string false "replay key"
// @Success  201 {object} CheckoutResponse
// @Failure  400 {object} ErrorResponse
// @Failure  402 {object} ErrorResponse "payment declined"
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "capacity exceeded / park closed / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /checkout [post]
func handleCheckout(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemCheckout(req.UserID, idemKey)

			if replayed(c, idem, idemStorageKey, idemKey) {
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if replayed(c, idem, idemStorageKey, idemKey) {
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Message: "A checkout with this key is in progress."})
				return
			}
		}

		fromCart := req.CartItems == nil
		lines := make([]checkout.Line, 0, len(req.CartItems))
		if fromCart {
			stored, err := svcs.Cart.Get(c.Request.Context(), req.UserID)
			if err != nil {
				releaseIdem(c, idem, idemStorageKey)
				respondErr(c, err)
				return
			}
			for _, it := range stored.Items {
				lines = append(lines, checkout.Line{ProductID: it.ProductID, Quantity: it.Quantity})
			}
		} else {
			for _, it := range req.CartItems {
				lines = append(lines, checkout.Line{
					ProductID: it.ProductID,
					Quantity:  it.Quantity,
					VisitDate: it.VisitDate,
				})
			}
		}

		receipt, err := svcs.Checkout.Checkout(c.Request.Context(), checkout.Request{
			UserID:        req.UserID,
			Lines:         lines,
			PaymentMethod: req.PaymentMethod,
			PaymentDetails: payment.Details{
				CardNumber:     req.PaymentDetails.CardNumber,
				WalletProvider: req.PaymentDetails.WalletProvider,
			},
		}, "ip:"+c.ClientIP())
		if err != nil {
			releaseIdem(c, idem, idemStorageKey)
			respondErr(c, err)
			return
		}

		if fromCart {
			if err := svcs.Cart.Clear(c.Request.Context(), req.UserID); err != nil {
				logger.Warn("clear cart after checkout",
					slog.Int64("user_id", req.UserID),
					slog.String("error", err.Error()),
				)
			}
		}

		resp := CheckoutResponse{
			Success: true,
			Message: receipt.PaymentMessage,
			Receipt: toReceiptDTO(receipt),
		}

		if idemStorageKey != "" {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Cancel a ticket
// @Param    id  path  int  true  "Ticket ID"
// @Param    req body  CancelTicketRequest true "payload"
// @Success  200 {object} CancelTicketResponse
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id}/cancel [post]
func handleCancelTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CancelTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}
		res, err := svcs.Booking.Cancel(c.Request.Context(), ticketID, req.UserID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toCancelTicketResponse(res))
	}
}

// @Summary  Move a ticket to another visit date
// @Param    id  path  int  true  "Ticket ID"
// @Param    req body  RescheduleRequest true "payload"
// @Success  200 {object} RescheduleResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "capacity exceeded / cancelled ticket"
// @Router   /bookings/{id}/reschedule [post]
func handleReschedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req RescheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}
		t, err := svcs.Booking.Reschedule(c.Request.Context(), ticketID, req.UserID, req.NewDate)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RescheduleResponse{
			Success: true,
			Message: "Ticket rescheduled.",
			Ticket:  toTicketStatusDTO(*t),
		})
	}
}

// @Summary  List a user's tickets or orders
// @Param    userId query int    true  "User ID"
// @Param    view   query string false "tickets (default) or orders"
// @Success  200 {object} UserTicketsResponse
// @Success  200 {object} UserOrdersResponse
// @Router   /orders/by-user [get]
func handleOrdersByUser(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseInt64Query(c, "userId")
		if !ok {
			return
		}
		switch c.DefaultQuery("view", "tickets") {
		case "tickets":
			ts, err := svcs.Orders.TicketsByUser(c.Request.Context(), userID)
			if err != nil {
				respondErr(c, err)
				return
			}
			c.JSON(http.StatusOK, UserTicketsResponse{Success: true, Tickets: toTicketDTOs(ts)})
		case "orders":
			list, err := svcs.Orders.ListByUser(c.Request.Context(), userID)
			if err != nil {
				respondErr(c, err)
				return
			}
			c.JSON(http.StatusOK, UserOrdersResponse{Success: true, Orders: toOrderDTOs(list)})
		default:
			badRequest(c, "view must be tickets or orders")
		}
	}
}

// @Summary  Park capacity for a day
// @Param    id   path  int    true  "Park ID"
// @Param    date query string false "YYYY-MM-DD, defaults to today"
// @Success  200 {object} AvailabilityResponse
// @Failure  404 {object} ErrorResponse
// @Router   /parks/{id}/availability [get]
func handleParkAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		parkID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		a, err := svcs.Query.ParkAvailability(c.Request.Context(), parkID, c.Query("date"))
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, AvailabilityResponse{
			ParkID:    a.ParkID,
			VisitDate: domain.FormatDate(a.VisitDate),
			Capacity:  a.Capacity,
			Active:    a.Active,
			Remaining: a.Remaining,
		}, "public, max-age=15", true)
	}
}

// @Summary  System totals
// @Security BearerAuth
// @Success  200 {object} SummaryResponse
// @Failure  401 {object} ErrorResponse
// @Router   /admin/summary [get]
func handleAdminSummary(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svcs.Admin.Summary(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, SummaryResponse{
			Success:            true,
			TotalUsers:         s.TotalUsers,
			TotalOrders:        s.TotalOrders,
			TotalRevenue:       money(s.TotalRevenue),
			TotalTickets:       s.TotalTickets,
			ActiveTickets:      s.ActiveTickets,
			CancelledTickets:   s.CancelledTickets,
			RescheduledTickets: s.RescheduledTickets,
		})
	}
}

// @Summary  List all orders
// @Security BearerAuth
// @Param    limit  query int false "page size"
// @Param    offset query int false "offset"
// @Success  200 {object} UserOrdersResponse
// @Router   /admin/orders [get]
func handleAdminOrders(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 50)
		offset := parseIntDefault(c.Query("offset"), 0)
		list, err := svcs.Admin.ListOrders(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, UserOrdersResponse{Success: true, Orders: toOrderDTOs(list)})
	}
}

// @Summary  List all tickets
// @Security BearerAuth
// @Param    limit  query int false "page size"
// @Param    offset query int false "offset"
// @Success  200 {object} UserTicketsResponse
// @Router   /admin/tickets [get]
func handleAdminTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 50)
		offset := parseIntDefault(c.Query("offset"), 0)
		ts, err := svcs.Admin.ListTickets(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, UserTicketsResponse{Success: true, Tickets: toTicketDTOs(ts)})
	}
}

// @Summary  Cancel a whole order
// @Security BearerAuth
// @Param    id  path  int  true  "Order ID"
// @Success  200 {object} CancelOrderResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "already cancelled"
// @Router   /admin/orders/{id}/cancel [post]
func handleAdminCancelOrder(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		res, err := svcs.Orders.Cancel(c.Request.Context(), orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ids := make([]int64, 0, len(res.CancelledTickets))
		for _, t := range res.CancelledTickets {
			ids = append(ids, t.ID)
		}
		c.JSON(http.StatusOK, CancelOrderResponse{
			Success:          true,
			Message:          "Order cancelled.",
			OrderID:          res.Order.ID,
			CancelledTickets: ids,
		})
	}
}

// @Summary  Cancel any ticket
// @Security BearerAuth
// @Param    id  path  int  true  "Ticket ID"
// @Success  200 {object} CancelTicketResponse
// @Router   /admin/bookings/{id}/cancel [post]
func handleAdminCancelTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		res, err := svcs.Booking.CancelAsAdmin(c.Request.Context(), ticketID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toCancelTicketResponse(res))
	}
}

// @Summary  Reschedule any ticket
// @Security BearerAuth
// @Param    id  path  int  true  "Ticket ID"
// @Param    req body  AdminRescheduleRequest true "payload"
// @Success  200 {object} RescheduleResponse
// @Router   /admin/bookings/{id}/reschedule [post]
func handleAdminReschedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req AdminRescheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindErr(c, err)
			return
		}
		t, err := svcs.Booking.RescheduleAsAdmin(c.Request.Context(), ticketID, req.NewDate)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RescheduleResponse{
			Success: true,
			Message: "Ticket rescheduled.",
			Ticket:  toTicketStatusDTO(*t),
		})
	}
}

// --- Helpers ---

func replayed(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey, idemKey string) bool {
	payload, ok, _ := idem.GetResult(c.Request.Context(), storageKey)
	if !ok {
		return false
	}
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
	return true
}

func releaseIdem(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey string) {
	if idem == nil || storageKey == "" {
		return
	}
	_ = idem.Release(c.Request.Context(), storageKey)
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseInt64Query(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		badRequest(c, name+" is required")
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		validation domain.ValidationError
		capacity   domain.CapacityExceededError
		declined   domain.PaymentDeclinedError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: validation.Reason})
	case errors.As(err, &capacity):
		c.JSON(http.StatusConflict, ErrorResponse{Message: fmt.Sprintf(
			"Only %d tickets left for %s.",
			max(capacity.Capacity-capacity.Active, 0),
			domain.FormatDate(capacity.VisitDate),
		)})
	case errors.As(err, &declined):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Message: declined.Message})
	case errors.Is(err, checkout.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Message: "Too many checkout attempts, slow down."})

	// not found
	case errors.Is(err, checkout.ErrUserNotFound), errors.Is(err, cart.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found."})
	case errors.Is(err, checkout.ErrProductNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "One or more products are invalid."})
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Product not found."})
	case errors.Is(err, booking.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Ticket not found for this user."})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Order not found."})
	case errors.Is(err, query.ErrParkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Park not found."})

	// conflicts
	case errors.Is(err, domain.ErrParkClosed):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Park is closed for bookings."})
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Cancelled tickets cannot be rescheduled."})
	case errors.Is(err, orders.ErrOrderNotCancellable):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Order already cancelled."})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Email is already registered."})
	case errors.Is(err, domain.ErrConflict):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Message: "The park is busy, please retry."})

	// auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password."})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token."})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Something went wrong."})
	}
}
