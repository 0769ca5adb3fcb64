// model/bookModel.go
package model

import "github.com/shopspring/decimal"

type Book struct {
	ID                int64           `json:"id"`
	ExternalID        int64           `json:"external_id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int64           `json:"stock_quantity"`
	AvailableQuantity int64           `json:"available_quantity"`
}
