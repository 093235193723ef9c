package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Well-known configuration keys.
const (
	KeyNumbering = "document_numbering"
	KeyTaxRates  = "tax_rates"
)

// Configuration is one row of the key/value configuration table.
type Configuration struct {
	ID        int64
	Key       string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NumberingEntry is the per-document-type numbering state stored under
// KeyNumbering. Prefix is the persisted document prefix, Next the counter.
type NumberingEntry struct {
	Prefix string
	Next   int64
}

// TaxRates is the typed view of the KeyTaxRates configuration.
type TaxRates struct {
	TVATaux  decimal.Decimal
	CSSTaux  decimal.Decimal
	TVAActif bool
	CSSActif bool
}

// DefaultData returns the documented defaults lazily installed for a missing
// configuration key. Unknown keys start empty.
func DefaultData(key string) map[string]any {
	switch key {
	case KeyNumbering:
		return map[string]any{
			"devis":           map[string]any{"prefix": "DEV", "next": float64(1)},
			"ordre_travail":   map[string]any{"prefix": "OT", "next": float64(1)},
			"facture":         map[string]any{"prefix": "FAC", "next": float64(1)},
			"avoir":           map[string]any{"prefix": "AV", "next": float64(1)},
			"note_debit":      map[string]any{"prefix": "ND", "next": float64(1)},
			"note_operation":  map[string]any{"prefix": "NOP", "next": float64(1)},
			"note_remise":     map[string]any{"prefix": "NR", "next": float64(1)},
			"note_remise_lot": map[string]any{"prefix": "NRL", "next": float64(1)},
		}
	case KeyTaxRates:
		return map[string]any{
			"tva_taux":  float64(18),
			"css_taux":  float64(1),
			"tva_actif": true,
			"css_actif": true,
		}
	default:
		return map[string]any{}
	}
}

// ParseNumberingEntry extracts the numbering state for one document type.
// Missing or malformed entries fall back to the defaults for that type.
func ParseNumberingEntry(data map[string]any, docType string) NumberingEntry {
	entry := NumberingEntry{Next: 1}
	if def, ok := DefaultData(KeyNumbering)[docType].(map[string]any); ok {
		entry.Prefix, _ = def["prefix"].(string)
	}
	raw, ok := data[docType].(map[string]any)
	if !ok {
		return entry
	}
	if p, ok := raw["prefix"].(string); ok && p != "" {
		entry.Prefix = p
	}
	if n := asInt64(raw["next"]); n > 0 {
		entry.Next = n
	}
	return entry
}

// SetNumberingEntry writes the numbering state for one document type back
// into the raw configuration data.
func SetNumberingEntry(data map[string]any, docType string, entry NumberingEntry) {
	data[docType] = map[string]any{
		"prefix": entry.Prefix,
		"next":   float64(entry.Next),
	}
}

// ParseTaxRates extracts the tax rate configuration, applying defaults for
// missing fields.
func ParseTaxRates(data map[string]any) TaxRates {
	rates := TaxRates{
		TVATaux:  decimal.NewFromInt(18),
		CSSTaux:  decimal.NewFromInt(1),
		TVAActif: true,
		CSSActif: true,
	}
	if v, ok := asDecimal(data["tva_taux"]); ok {
		rates.TVATaux = v
	}
	if v, ok := asDecimal(data["css_taux"]); ok {
		rates.CSSTaux = v
	}
	if v, ok := data["tva_actif"].(bool); ok {
		rates.TVAActif = v
	}
	if v, ok := data["css_actif"].(bool); ok {
		rates.CSSActif = v
	}
	return rates
}

// Raw converts the rates back into configuration data.
func (t TaxRates) Raw() map[string]any {
	return map[string]any{
		"tva_taux":  t.TVATaux.InexactFloat64(),
		"css_taux":  t.CSSTaux.InexactFloat64(),
		"tva_actif": t.TVAActif,
		"css_actif": t.CSSActif,
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
