// Package watchlist holds the static renewable-energy coverage universe.
package watchlist

import "strings"

type Item struct {
	Ticker    string
	Name      string
	Subsector string
	Region    string
}

// Default is the tracked universe. Order matters: the leading entries are
// the fallback set used when a query names the sector but no ticker.
var Default = []Item{
	{"NEE", "NextEra Energy, Inc.", "Utility", "US"},
	{"IBDRY", "Iberdrola SA ADR", "Utility", "EU"},
	{"GEV", "GE Vernova Inc.", "Energy Equipment", "US"},
	{"VWDRY", "Vestas Wind Systems A/S", "Wind", "EU"},
	{"BEPC", "Brookfield Renewable Corporation", "Utility", "US"},
	{"JKS", "JinkoSolar Holding Co., Ltd.", "Solar", "Asia"},
	{"ENPH", "Enphase Energy, Inc.", "Solar", "US"},
	{"FSLR", "First Solar, Inc.", "Solar", "US"},
	{"CSIQ", "Canadian Solar Inc.", "Solar", "US"},
	{"RUN", "Sunrun Inc.", "Solar", "US"},
	{"SEDG", "SolarEdge Technologies, Inc.", "Solar", "US"},
	{"ARRY", "Array Technologies, Inc.", "Solar", "US"},
	{"DNNGY", "Ørsted A/S", "Wind", "EU"},
	{"SIEGY", "Siemens Energy AG", "Wind", "EU"},
	{"TPIC", "TPI Composites, Inc.", "Wind", "US"},
	{"PLUG", "Plug Power Inc.", "Hydrogen", "US"},
	{"BE", "Bloom Energy Corporation", "Hydrogen", "US"},
	{"BLDP", "Ballard Power Systems Inc.", "Hydrogen", "US"},
	{"CWEN", "Clearway Energy, Inc.", "Utility", "US"},
	{"PWR", "Quanta Services, Inc.", "Energy Equipment", "US"},
	{"AMRC", "Ameresco, Inc.", "Energy Services", "US"},
	{"ORA", "Ormat Technologies, Inc.", "Geothermal", "US"},
}

// Tickers returns every tracked ticker, in watchlist order.
func Tickers() []string {
	out := make([]string, 0, len(Default))
	for _, w := range Default {
		out = append(out, w.Ticker)
	}
	return out
}

// Lookup returns the watchlist entry for a ticker, if tracked.
func Lookup(ticker string) (Item, bool) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	for _, w := range Default {
		if w.Ticker == t {
			return w, true
		}
	}
	return Item{}, false
}

// BySubsector filters the watchlist. An empty subsector matches all.
func BySubsector(subsector string) []Item {
	if subsector == "" {
		return Default
	}
	var out []Item
	for _, w := range Default {
		if strings.EqualFold(w.Subsector, subsector) {
			out = append(out, w)
		}
	}
	return out
}
