package book

type CreateBookReq struct {
	ExternalID int64  `json:"external_id" validate:"required,gt=0"`
	Title      string `json:"title" validate:"required"`
	Price      string `json:"price" validate:"required"`
	Stock      int64  `json:"stock_quantity" validate:"required,gt=0"`
}
