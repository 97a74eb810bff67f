package domain

// Vendor sells predefined items.
type Vendor struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category" yaml:"category"`
	Location Location `json:"location" yaml:"location"`
	Rating   float64  `json:"rating" yaml:"rating"`
	IsOpen   bool     `json:"is_open" yaml:"is_open"`
}

// PredefinedItem is a catalog item that can be ordered as an instant task.
type PredefinedItem struct {
	ID          string `json:"id" yaml:"id"`
	VendorID    string `json:"vendor_id" yaml:"vendor_id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Price       int64  `json:"price" yaml:"price"`
	Category    string `json:"category" yaml:"category"`
	IsAvailable bool   `json:"is_available" yaml:"is_available"`
}
