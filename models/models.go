package models

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&ProductInventory{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Payment{},
	}
}
