package rest

// productQuery is the query string accepted by GET /products.
type productQuery struct {
	Limit *int `form:"limit" validate:"omitnil,min=1,max=1000"`
}

// productParams identifies a product in the path.
type productParams struct {
	ID string `form:"id" validate:"required,uuid"`
}
