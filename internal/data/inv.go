package data

// Inventory scopes.
const (
	ScopeTemp   = 0
	ScopePerm   = 1
	ScopeShared = 2
)

// InvType is an inventory container definition. Shops are shared
// inventories with stock entries.
type InvType struct {
	ID        int     `yaml:"id"`
	Debug     string  `yaml:"debug_name"`
	Scope     int     `yaml:"scope"`
	Size      int     `yaml:"size"`
	StackAll  bool    `yaml:"stack_all"`
	Restock   bool    `yaml:"restock"`
	AllStock  bool    `yaml:"all_stock"` // shop buys any obj
	Stock     []Stock `yaml:"stock"`
	Protect   bool    `yaml:"protect"`
	RunWeight bool    `yaml:"run_weight"`
	SellPct   int     `yaml:"sell_pct"` // % of obj cost a shop charges
	BuyPct    int     `yaml:"buy_pct"`  // % of obj cost a shop pays
}

// Stock is a shop's target count for one obj and how often it moves one
// step toward that target.
type Stock struct {
	Obj   int `yaml:"obj"`
	Count int `yaml:"count"`
	Rate  int `yaml:"rate"` // ticks per step
}

func (i *InvType) ConfigID() int     { return i.ID }
func (i *InvType) DebugName() string { return i.Debug }

func (i *InvType) setDefaults() {
	i.Size = 1
	i.Protect = true
	i.RunWeight = true
	i.SellPct = 100
	i.BuyPct = 60
}

// StockFor returns the stock entry for obj, if it is a stock item.
func (i *InvType) StockFor(obj int) (Stock, bool) {
	for _, s := range i.Stock {
		if s.Obj == obj {
			return s, true
		}
	}
	return Stock{}, false
}
