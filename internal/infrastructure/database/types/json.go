package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/eslsoft/traitscore/internal/entity"
)

// WordList stores a list of words as a JSON array.
type WordList []string

// WeightTable stores raw weight rows as a JSON array.
type WeightTable []entity.RawWeight

// Scan implements sql.Scanner
func (w *WordList) Scan(src any) error {
	var out []string
	if err := scanJSON(src, &out, "WordList"); err != nil {
		return err
	}
	*w = out
	return nil
}

// Value implements driver.Valuer. Nil lists are stored as [].
func (w WordList) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(w))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *WeightTable) Scan(src any) error {
	var out []entity.RawWeight
	if err := scanJSON(src, &out, "WeightTable"); err != nil {
		return err
	}
	*t = out
	return nil
}

// Value implements driver.Valuer
func (t WeightTable) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]entity.RawWeight(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src any, dst any, name string) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, dst)
	case string:
		if data == "" {
			return nil
		}
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("%s: unsupported src type %T", name, src)
	}
}
