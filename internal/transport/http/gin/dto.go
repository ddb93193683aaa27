package httpgin

import (
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/service/booking"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AddToCartRequest struct {
	UserID    int64 `json:"userId" binding:"required"`
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type ClearCartRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

type CheckoutItem struct {
	ProductID int64  `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	VisitDate string `json:"visitDate"`
}

type PaymentDetails struct {
	CardNumber     string `json:"cardNumber"`
	WalletProvider string `json:"walletProvider"`
}

type CheckoutRequest struct {
	UserID int64 `json:"userId" binding:"required"`
	// CartItems omitted means the stored cart.
	CartItems      []CheckoutItem `json:"cartItems" binding:"omitempty,dive"`
	PaymentMethod  string         `json:"paymentMethod" binding:"required"`
	PaymentDetails PaymentDetails `json:"paymentDetails"`
}

type CancelTicketRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

type RescheduleRequest struct {
	UserID  int64  `json:"userId" binding:"required"`
	NewDate string `json:"newDate" binding:"required"`
}

type AdminRescheduleRequest struct {
	NewDate string `json:"newDate" binding:"required"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserDTO struct {
	UserID   int64  `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

type CartItemDTO struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

type CartDTO struct {
	UserID int64         `json:"userId"`
	Items  []CartItemDTO `json:"items"`
	Total  string        `json:"total"`
}

type CartResponse struct {
	Success bool    `json:"success"`
	Cart    CartDTO `json:"cart"`
}

type OrderItemDTO struct {
	ItemID      int64  `json:"itemId"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	LockedPrice string `json:"lockedPrice"`
}

type ReceiptDTO struct {
	OrderID          int64          `json:"orderId"`
	UserID           int64          `json:"userId"`
	TotalAmount      string         `json:"totalAmount"`
	Status           string         `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
	Items            []OrderItemDTO `json:"items"`
	TicketIDs        []int64        `json:"ticketIds"`
	PaymentMethod    string         `json:"paymentMethod"`
	PaymentReference string         `json:"paymentReference"`
}

type CheckoutResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Receipt ReceiptDTO `json:"receipt"`
}

type TicketDTO struct {
	TicketID       int64  `json:"ticketId"`
	OrderID        int64  `json:"orderId"`
	UserID         int64  `json:"userId"`
	ParkID         int64  `json:"parkId"`
	ParkName       string `json:"parkName,omitempty"`
	VisitDate      string `json:"visitDate"`
	Status         string `json:"status"`
	RedemptionCode string `json:"redemptionCode"`
}

type TicketStatusDTO struct {
	TicketID  int64  `json:"ticketId"`
	Status    string `json:"status"`
	VisitDate string `json:"visitDate"`
}

type CancelTicketResponse struct {
	Success          bool            `json:"success"`
	Message          string          `json:"message"`
	AlreadyCancelled bool            `json:"alreadyCancelled"`
	Ticket           TicketStatusDTO `json:"ticket"`
}

type RescheduleResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Ticket  TicketStatusDTO `json:"ticket"`
}

type OrderDTO struct {
	OrderID     int64          `json:"orderId"`
	UserID      int64          `json:"userId"`
	CreatedAt   time.Time      `json:"createdAt"`
	TotalAmount string         `json:"totalAmount"`
	Status      string         `json:"status"`
	Items       []OrderItemDTO `json:"items"`
}

type UserTicketsResponse struct {
	Success bool        `json:"success"`
	Tickets []TicketDTO `json:"tickets"`
}

type UserOrdersResponse struct {
	Success bool       `json:"success"`
	Orders  []OrderDTO `json:"orders"`
}

type CancelOrderResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message"`
	OrderID          int64   `json:"orderId"`
	CancelledTickets []int64 `json:"cancelledTickets"`
}

type AvailabilityResponse struct {
	ParkID    int64  `json:"parkId"`
	VisitDate string `json:"visitDate"`
	Capacity  int    `json:"capacity"`
	Active    int    `json:"active"`
	Remaining int    `json:"remaining"`
}

type SummaryResponse struct {
	Success            bool   `json:"success"`
	TotalUsers         int64  `json:"totalUsers"`
	TotalOrders        int64  `json:"totalOrders"`
	TotalRevenue       string `json:"totalRevenue"`
	TotalTickets       int64  `json:"totalTickets"`
	ActiveTickets      int64  `json:"activeTickets"`
	CancelledTickets   int64  `json:"cancelledTickets"`
	RescheduledTickets int64  `json:"rescheduledTickets"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toUserDTO(u domain.User) UserDTO {
	return UserDTO{UserID: u.ID, FullName: u.FullName, Email: u.Email, Role: string(u.Role)}
}

func toCartDTO(c *domain.Cart) CartDTO {
	out := CartDTO{UserID: c.UserID, Items: make([]CartItemDTO, 0, len(c.Items)), Total: money(c.Total)}
	for _, it := range c.Items {
		out.Items = append(out.Items, CartItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   money(it.UnitPrice),
			Quantity:    it.Quantity,
			LineTotal:   money(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		})
	}
	return out
}

func toOrderItemDTOs(items []domain.OrderItem) []OrderItemDTO {
	out := make([]OrderItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemDTO{
			ItemID:      it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			LockedPrice: money(it.LockedPrice),
		})
	}
	return out
}

func toReceiptDTO(r *domain.Receipt) ReceiptDTO {
	ids := r.TicketIDs
	if ids == nil {
		ids = []int64{}
	}
	return ReceiptDTO{
		OrderID:          r.OrderID,
		UserID:           r.UserID,
		TotalAmount:      money(r.TotalAmount),
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
		Items:            toOrderItemDTOs(r.Items),
		TicketIDs:        ids,
		PaymentMethod:    r.PaymentMethod,
		PaymentReference: r.PaymentReference,
	}
}

func toTicketDTO(t domain.Ticket) TicketDTO {
	return TicketDTO{
		TicketID:       t.ID,
		OrderID:        t.OrderID,
		UserID:         t.UserID,
		ParkID:         t.ParkID,
		ParkName:       t.ParkName,
		VisitDate:      domain.FormatDate(t.VisitDate),
		Status:         string(t.Status),
		RedemptionCode: t.RedemptionCode,
	}
}

func toTicketDTOs(ts []domain.Ticket) []TicketDTO {
	out := make([]TicketDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTicketDTO(t))
	}
	return out
}

func toTicketStatusDTO(t domain.Ticket) TicketStatusDTO {
	return TicketStatusDTO{TicketID: t.ID, Status: string(t.Status), VisitDate: domain.FormatDate(t.VisitDate)}
}

func toOrderDTOs(os []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(os))
	for _, o := range os {
		out = append(out, OrderDTO{
			OrderID:     o.ID,
			UserID:      o.UserID,
			CreatedAt:   o.CreatedAt,
			TotalAmount: money(o.TotalAmount),
			Status:      string(o.Status),
			Items:       toOrderItemDTOs(o.Items),
		})
	}
	return out
}

func toCancelTicketResponse(r *booking.CancelResult) CancelTicketResponse {
	return CancelTicketResponse{
		Success:          true,
		Message:          r.Message(),
		AlreadyCancelled: r.AlreadyCancelled,
		Ticket:           toTicketStatusDTO(r.Ticket),
	}
}
