package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is a single retail sale transaction.
//
// The query pipeline only filters, sorts and searches on the customer,
// product classification, payment, date and quantity fields. The remaining
// fields are carried through to callers untouched.
type SaleRecord struct {
	ID            string
	TransactionID string

	// Customer
	CustomerID     string
	CustomerName   string
	PhoneNumber    string
	Gender         string
	Age            *int
	CustomerRegion string
	CustomerType   string

	// Product
	ProductID       string
	ProductName     string
	Brand           string
	ProductCategory string
	Tags            []string

	// Amounts (nil = not recorded)
	Quantity           *int
	PricePerUnit       *decimal.Decimal
	DiscountPercentage *decimal.Decimal
	TotalAmount        *decimal.Decimal
	FinalAmount        *decimal.Decimal

	// Operational
	Date          time.Time
	PaymentMethod string
	OrderStatus   string
	DeliveryType  string
	StoreID       string
	StoreLocation string
	SalespersonID string
	EmployeeName  string
}
