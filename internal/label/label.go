// Package label defines the order and shipping-label models shared by the
// poller, the stores, and the operator-facing surfaces.
package label

// Product is a single order line.
type Product struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Package is one shipment attached to an order. Both fields are required
// before a label can be fetched; entries missing either are skipped.
type Package struct {
	PackageID   string `json:"package_id"`
	CourierCode string `json:"courier_code"`
}

// Order is one pending order as reported by the order source. Orders are
// rebuilt fresh on every poll and never persisted directly; only the derived
// processed records and deferred labels are.
type Order struct {
	ID             string    `json:"order_id"`
	CustomerName   string    `json:"customer_name"`
	Platform       string    `json:"platform"`
	ShippingMethod string    `json:"shipping_method"`
	Products       []Product `json:"products"`
	Packages       []Package `json:"packages,omitempty"`
}

// Valid reports whether a package carries everything needed to fetch a label.
func (p Package) Valid() bool {
	return p.PackageID != "" && p.CourierCode != ""
}

// Clone returns a deep copy so snapshots handed to concurrent readers never
// alias the poller's working data.
func (o Order) Clone() Order {
	out := o
	if o.Products != nil {
		out.Products = make([]Product, len(o.Products))
		copy(out.Products, o.Products)
	}
	if o.Packages != nil {
		out.Packages = make([]Package, len(o.Packages))
		copy(out.Packages, o.Packages)
	}
	return out
}
