package catalog

// Item is a purchasable product.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       int     `json:"price"`
	Brand       string  `json:"brand"`
	ImagePath   string  `json:"imagePath"`
	IsNew       bool    `json:"isNew"`
	CategoryIDs []int64 `json:"-"`
}

// Category groups items; an item may belong to several categories.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
