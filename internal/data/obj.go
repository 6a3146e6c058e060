package data

// ObjType is an item definition.
type ObjType struct {
	ID           int      `yaml:"id"`
	Debug        string   `yaml:"debug_name"`
	Name         string   `yaml:"name"`
	Desc         string   `yaml:"desc"`
	Stackable    bool     `yaml:"stackable"`
	Cost         int      `yaml:"cost"`
	Members      bool     `yaml:"members"`
	Tradeable    bool     `yaml:"tradeable"`
	Weight       int      `yaml:"weight"` // grams
	Category     int      `yaml:"category"`
	WearPos      int      `yaml:"wear_pos"`
	Ops          []string `yaml:"ops"`
	IOps         []string `yaml:"iops"`
	CertLink     int      `yaml:"cert_link"`
	CertTemplate int      `yaml:"cert_template"`
	Dummy        bool     `yaml:"dummy"`
}

func (o *ObjType) ConfigID() int     { return o.ID }
func (o *ObjType) DebugName() string { return o.Debug }

func (o *ObjType) setDefaults() {
	o.Cost = 1
	o.Category = -1
	o.WearPos = -1
	o.CertLink = -1
	o.CertTemplate = -1
	o.Ops = []string{"", "", "Take", "", ""}
	o.IOps = []string{"", "", "", "", "Drop"}
}

// IsCert reports whether the obj is a banknote of another obj.
func (o *ObjType) IsCert() bool { return o.CertTemplate != -1 && o.CertLink != -1 }
