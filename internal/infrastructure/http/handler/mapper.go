package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/truestate/sales/internal/domain"
)

// SaleRecordDTO is the JSON form of a sale record.
type SaleRecordDTO struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId,omitempty"`

	CustomerID     string `json:"customerId,omitempty"`
	CustomerName   string `json:"customerName"`
	PhoneNumber    string `json:"phoneNumber"`
	Gender         string `json:"gender"`
	Age            *int   `json:"age,omitempty"`
	CustomerRegion string `json:"customerRegion"`
	CustomerType   string `json:"customerType,omitempty"`

	ProductID       string   `json:"productId,omitempty"`
	ProductName     string   `json:"productName,omitempty"`
	Brand           string   `json:"brand,omitempty"`
	ProductCategory string   `json:"productCategory"`
	Tags            []string `json:"tags"`

	Quantity           *int             `json:"quantity,omitempty"`
	PricePerUnit       *decimal.Decimal `json:"pricePerUnit,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`
	TotalAmount        *decimal.Decimal `json:"totalAmount,omitempty"`
	FinalAmount        *decimal.Decimal `json:"finalAmount,omitempty"`

	Date          time.Time `json:"date"`
	PaymentMethod string    `json:"paymentMethod"`
	OrderStatus   string    `json:"orderStatus,omitempty"`
	DeliveryType  string    `json:"deliveryType,omitempty"`
	StoreID       string    `json:"storeId,omitempty"`
	StoreLocation string    `json:"storeLocation,omitempty"`
	SalespersonID string    `json:"salespersonId,omitempty"`
	EmployeeName  string    `json:"employeeName,omitempty"`
}

// SalesPageDTO is the JSON result envelope.
type SalesPageDTO struct {
	Items        []SaleRecordDTO `json:"items"`
	Page         int             `json:"page"`
	PageSize     int             `json:"pageSize"`
	TotalItems   int             `json:"totalItems"`
	TotalPages   int             `json:"totalPages"`
	HasNextPage  bool            `json:"hasNextPage"`
	HasPrevPage  bool            `json:"hasPrevPage"`
	InvalidRange bool            `json:"invalidRange,omitempty"`
}

// MapSalesPageToDTO converts the domain envelope. Items is never null.
func MapSalesPageToDTO(page *domain.SalesPage) SalesPageDTO {
	items := make([]SaleRecordDTO, len(page.Items))
	for i := range page.Items {
		items[i] = MapSaleRecordToDTO(page.Items[i])
	}

	return SalesPageDTO{
		Items:        items,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalItems:   page.TotalItems,
		TotalPages:   page.TotalPages,
		HasNextPage:  page.HasNextPage,
		HasPrevPage:  page.HasPrevPage,
		InvalidRange: page.InvalidRange,
	}
}

// MapSaleRecordToDTO converts one record. Tags is never null.
func MapSaleRecordToDTO(rec domain.SaleRecord) SaleRecordDTO {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	return SaleRecordDTO{
		ID:                 rec.ID,
		TransactionID:      rec.TransactionID,
		CustomerID:         rec.CustomerID,
		CustomerName:       rec.CustomerName,
		PhoneNumber:        rec.PhoneNumber,
		Gender:             rec.Gender,
		Age:                rec.Age,
		CustomerRegion:     rec.CustomerRegion,
		CustomerType:       rec.CustomerType,
		ProductID:          rec.ProductID,
		ProductName:        rec.ProductName,
		Brand:              rec.Brand,
		ProductCategory:    rec.ProductCategory,
		Tags:               tags,
		Quantity:           rec.Quantity,
		PricePerUnit:       rec.PricePerUnit,
		DiscountPercentage: rec.DiscountPercentage,
		TotalAmount:        rec.TotalAmount,
		FinalAmount:        rec.FinalAmount,
		Date:               rec.Date.UTC(),
		PaymentMethod:      rec.PaymentMethod,
		OrderStatus:        rec.OrderStatus,
		DeliveryType:       rec.DeliveryType,
		StoreID:            rec.StoreID,
		StoreLocation:      rec.StoreLocation,
		SalespersonID:      rec.SalespersonID,
		EmployeeName:       rec.EmployeeName,
	}
}
