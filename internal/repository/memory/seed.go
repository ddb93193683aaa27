package memory

import (
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/shopspring/decimal"
)

func parkID(id int64) *int64 { return &id }

// DefaultParks mirrors the parks seeded into Postgres.
var DefaultParks = []domain.Park{
	{ID: 1, Name: "Santubong National Park", DailyCapacity: 100, Location: "Kuching", Status: domain.ParkOpen},
	{ID: 2, Name: "Bako National Park", DailyCapacity: 150, Location: "Kuching", Status: domain.ParkOpen},
	{ID: 3, Name: "Gunung Mulu National Park", DailyCapacity: 50, Location: "Miri", Status: domain.ParkClosed},
	{ID: 4, Name: "Kinabalu Park", DailyCapacity: 300, Location: "Sabah", Status: domain.ParkOpen},
	{ID: 5, Name: "Tunku Abdul Rahman Park", DailyCapacity: 220, Location: "Sabah", Status: domain.ParkOpen},
	{ID: 6, Name: "Endau-Rompin National Park", DailyCapacity: 180, Location: "Johor", Status: domain.ParkOpen},
	{ID: 7, Name: "Kuching Wetlands", DailyCapacity: 90, Location: "Kuching", Status: domain.ParkOpen},
	{ID: 8, Name: "Miri-Sibuti Coral Reefs", DailyCapacity: 160, Location: "Miri", Status: domain.ParkOpen},
	{ID: 9, Name: "Niah National Park", DailyCapacity: 140, Location: "Miri", Status: domain.ParkOpen},
	{ID: 10, Name: "Similajau National Park", DailyCapacity: 110, Location: "Bintulu", Status: domain.ParkOpen},
	{ID: 11, Name: "Bako Rainforest Reserve", DailyCapacity: 130, Location: "Kuching", Status: domain.ParkOpen},
	{ID: 12, Name: "Danum Valley", DailyCapacity: 80, Location: "Sabah", Status: domain.ParkOpen},
	{ID: 13, Name: "Tabin Wildlife Reserve", DailyCapacity: 95, Location: "Sabah", Status: domain.ParkOpen},
	{ID: 14, Name: "Gunung Gading National Park", DailyCapacity: 75, Location: "Lundu", Status: domain.ParkOpen},
	{ID: 15, Name: "Matang Wildlife Centre", DailyCapacity: 85, Location: "Kuching", Status: domain.ParkOpen},
	{ID: 16, Name: "Lambir Hills National Park", DailyCapacity: 120, Location: "Miri", Status: domain.ParkOpen},
	{ID: 17, Name: "Loagan Bunut National Park", DailyCapacity: 70, Location: "Miri", Status: domain.ParkOpen},
	{ID: 18, Name: "Mulu Pinnacles Reserve", DailyCapacity: 60, Location: "Miri", Status: domain.ParkOpen},
	{ID: 19, Name: "Tasek Merimbun", DailyCapacity: 90, Location: "Tutong", Status: domain.ParkOpen},
	{ID: 20, Name: "Ulu Temburong", DailyCapacity: 100, Location: "Temburong", Status: domain.ParkOpen},
	{ID: 21, Name: "Royal Belum State Park", DailyCapacity: 150, Location: "Perak", Status: domain.ParkOpen},
	{ID: 22, Name: "Taman Negara", DailyCapacity: 250, Location: "Pahang", Status: domain.ParkOpen},
	{ID: 23, Name: "Kuala Selangor Nature Park", DailyCapacity: 120, Location: "Selangor", Status: domain.ParkOpen},
}

var DefaultProducts = []domain.Product{
	{ID: 1, Name: "Santubong Adult Ticket", UnitPrice: decimal.RequireFromString("25.00"), Type: domain.ProductTicket, ParkID: parkID(1)},
	{ID: 2, Name: "Bako Adult Ticket", UnitPrice: decimal.RequireFromString("30.00"), Type: domain.ProductTicket, ParkID: parkID(2)},
	{ID: 3, Name: "Mulu Cave Pass", UnitPrice: decimal.RequireFromString("50.00"), Type: domain.ProductTicket, ParkID: parkID(3)},
	{ID: 4, Name: "Rainforest T-Shirt", UnitPrice: decimal.RequireFromString("55.00"), Type: domain.ProductMerch},
	{ID: 5, Name: "Wildlife Sticker Pack", UnitPrice: decimal.RequireFromString("8.00"), Type: domain.ProductMerch},
}

// Seed loads the default catalog into s.
func Seed(s *Store) {
	for _, p := range DefaultParks {
		s.PutPark(p)
	}
	for _, p := range DefaultProducts {
		s.PutProduct(p)
	}
}
