package model

// PriceOption is one flattened row of the provider price table for a product.
type PriceOption struct {
	Country  string  `json:"country"`
	Operator string  `json:"operator"`
	Cost     float64 `json:"cost"`
	Count    int     `json:"count"`
}

// Country describes one provider country with the number of serving operators.
type Country struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Operators int    `json:"operators"`
}

// Profile mirrors the provider account summary.
type Profile struct {
	Email   string  `json:"email"`
	Vendor  string  `json:"vendor"`
	Balance float64 `json:"balance"`
	Rating  float64 `json:"rating"`
}
