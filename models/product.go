package models

// Product is a catalog entity. The catalog owns it; cart and wishlist
// entries reference it and never mutate it.
type Product struct {
	ID            string   `json:"id" bson:"id"`
	Title         string   `json:"title" bson:"title"`
	Description   string   `json:"description,omitempty" bson:"description,omitempty"`
	Price         int64    `json:"price" bson:"price"`
	OriginalPrice int64    `json:"original_price,omitempty" bson:"original_price,omitempty"`
	Images        []string `json:"images,omitempty" bson:"images,omitempty"`
	Tags          []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Category      string   `json:"category,omitempty" bson:"category,omitempty"`
	Subcategory   string   `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Featured      bool     `json:"featured,omitempty" bson:"featured,omitempty"`
}

// CartItem pairs a product with a quantity. A cart holds at most one
// item per product id and quantity is always >= 1; a zero-or-below
// quantity request removes the item instead.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
