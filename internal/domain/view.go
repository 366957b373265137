package domain

// ComponentView is the display shape of one filled slot.
type ComponentView struct {
	Slot  Slot   `json:"slot"`
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Price string `json:"price"`
}

// BuildView is the flattened, display-only shape of a build. It is never decoded back into a Build.
type BuildView struct {
	SKU             int             `json:"sku"`
	Components      []ComponentView `json:"components"`
	ExtraCosts      string          `json:"extra_costs"`
	TargetSellPrice string          `json:"target_sell_price"`
	ExtraProfit     string          `json:"extra_profit"`
	TotalPrice      string          `json:"total_price"`
	TargetProfit    string          `json:"target_profit"`
	Sold            bool            `json:"sold"`
	SellPrice       string          `json:"sell_price"`
	TotalProfit     *string         `json:"total_profit,omitempty"`
	ListDate        string          `json:"list_date"`
	SellDate        string          `json:"sell_date"`
	ImageFileName   string          `json:"image_file_name,omitempty"`
	Specs           Specs           `json:"specs,omitempty"`
}

// NewView renders b with money to two decimal places.
func NewView(b *Build) BuildView {
	v := BuildView{
		SKU:             b.SKU,
		Components:      make([]ComponentView, 0, len(Slots)),
		ExtraCosts:      b.ExtraCosts.StringFixed(2),
		TargetSellPrice: b.TargetSellPrice.StringFixed(2),
		ExtraProfit:     b.ExtraProfit.StringFixed(2),
		TotalPrice:      b.TotalPrice().StringFixed(2),
		TargetProfit:    b.TargetProfit().StringFixed(2),
		Sold:            b.Sold,
		SellPrice:       b.SellPrice.StringFixed(2),
		ListDate:        b.ListDate,
		SellDate:        b.SellDate,
		ImageFileName:   b.ImageFileName,
		Specs:           b.Specs,
	}
	for _, slot := range Slots {
		c, ok := b.Component(slot)
		if !ok {
			continue
		}
		v.Components = append(v.Components, ComponentView{
			Slot:  slot,
			Kind:  c.Kind,
			Name:  c.Name,
			Brand: c.Brand,
			Price: c.Price.StringFixed(2),
		})
	}
	if profit, ok := b.TotalProfit(); ok {
		s := profit.StringFixed(2)
		v.TotalProfit = &s
	}
	return v
}
