package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type InvestmentType string

const (
	InvestmentFixedIncome InvestmentType = "fixed_income"
	InvestmentStocks      InvestmentType = "stocks"
	InvestmentFunds       InvestmentType = "funds"
	InvestmentRealEstate  InvestmentType = "real_estate"
	InvestmentCrypto      InvestmentType = "crypto"
	InvestmentDerivatives InvestmentType = "derivatives"
	InvestmentSavings     InvestmentType = "savings"
	InvestmentPension     InvestmentType = "pension"
	InvestmentOther       InvestmentType = "other"
)

var knownInvestmentTypes = map[InvestmentType]struct{}{
	InvestmentFixedIncome: {},
	InvestmentStocks:      {},
	InvestmentFunds:       {},
	InvestmentRealEstate:  {},
	InvestmentCrypto:      {},
	InvestmentDerivatives: {},
	InvestmentSavings:     {},
	InvestmentPension:     {},
	InvestmentOther:       {},
}

// InvestmentTypes is a sorted set of investment types. It is a JSON array on
// the wire and in the database column. A nil set means "not provided".
type InvestmentTypes []InvestmentType

// ParseInvestmentTypes normalizes raw values into a set, rejecting unknown
// entries. Blank entries are skipped.
func ParseInvestmentTypes(values []string) (InvestmentTypes, error) {
	seen := make(map[InvestmentType]struct{}, len(values))
	set := InvestmentTypes{}
	for _, v := range values {
		it := InvestmentType(strings.ToLower(strings.TrimSpace(v)))
		if it == "" {
			continue
		}
		if _, ok := knownInvestmentTypes[it]; !ok {
			return nil, fmt.Errorf("unknown investment type %q", v)
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		set = append(set, it)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set, nil
}

func (t InvestmentTypes) Contains(it InvestmentType) bool {
	for _, v := range t {
		if v == it {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts either an array of strings or the legacy
// comma-separated string form.
func (t *InvestmentTypes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*t = nil
		return nil
	}

	var values []string
	if strings.HasPrefix(trimmed, "\"") {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		values = strings.Split(joined, ",")
	} else if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("investment_types must be an array of strings")
	}

	set, err := ParseInvestmentTypes(values)
	if err != nil {
		return err
	}
	*t = set
	return nil
}

func (t InvestmentTypes) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal([]InvestmentType(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *InvestmentTypes) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into InvestmentTypes", src)
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return err
	}
	set, err := ParseInvestmentTypes(values)
	if err != nil {
		return err
	}
	*t = set
	return nil
}
