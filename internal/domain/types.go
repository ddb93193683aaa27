package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ParkStatus string

const (
	ParkOpen   ParkStatus = "OPEN"
	ParkClosed ParkStatus = "CLOSED"
)

type ProductType string

const (
	ProductTicket ProductType = "TICKET"
	ProductMerch  ProductType = "MERCH"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

type TicketStatus string

const (
	TicketActive      TicketStatus = "ACTIVE"
	TicketCancelled   TicketStatus = "CANCELLED"
	TicketRescheduled TicketStatus = "RESCHEDULED"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
}

type Park struct {
	ID            int64
	Name          string
	DailyCapacity int
	Location      string
	Status        ParkStatus
}

type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
	Type      ProductType
	ParkID    *int64 // required for TICKET, nil for MERCH
}

type Order struct {
	ID          int64
	UserID      int64
	CreatedAt   time.Time
	Status      OrderStatus
	TotalAmount decimal.Decimal
	Items       []OrderItem
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	LockedPrice decimal.Decimal
}

// LineTotal is LockedPrice × Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.LockedPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Ticket struct {
	ID             int64
	OrderID        int64
	UserID         int64
	ParkID         int64
	ParkName       string
	VisitDate      time.Time // calendar day, midnight UTC
	Status         TicketStatus
	RedemptionCode string
	CreatedAt      time.Time
}

type CartItem struct {
	UserID      int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

type Cart struct {
	UserID int64
	Items  []CartItem
	Total  decimal.Decimal
}

type Receipt struct {
	OrderID          int64
	UserID           int64
	TotalAmount      decimal.Decimal
	Status           OrderStatus
	CreatedAt        time.Time
	Items            []OrderItem
	TicketIDs        []int64
	PaymentMethod    string
	PaymentReference string
	PaymentMessage   string
}

type ParkAvailability struct {
	ParkID    int64
	VisitDate time.Time
	Capacity  int
	Active    int
	Remaining int
}

type SystemSummary struct {
	TotalUsers         int64
	TotalOrders        int64
	TotalRevenue       decimal.Decimal
	TotalTickets       int64
	ActiveTickets      int64
	CancelledTickets   int64
	RescheduledTickets int64
}
