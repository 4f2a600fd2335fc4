package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

const _defaultMaxOrderKeys = 2

// ParseOrderBy resolves "key [asc|desc], ..." against the schema. With no input the
// schema default is used. The fallback key is appended when absent so the ordering
// is always total.
func ParseOrderBy(raw string, schema OrderSchema) ([]OrderTerm, error) {
	if err := validateOrderSchema(schema); err != nil {
		return nil, err
	}
	maxKeys := schema.MaxKeys
	if maxKeys <= 0 {
		maxKeys = _defaultMaxOrderKeys
	}

	var terms []OrderTerm
	seen := map[string]struct{}{}
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, invalidf("invalid order segment %q", strings.TrimSpace(seg))
		}
		key := parts[0]
		field, ok := schema.Fields[key]
		if !ok {
			return nil, invalidf("field %q cannot be used for ordering", key)
		}
		desc := false
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, invalidf("invalid direction %q for field %q", parts[1], key)
			}
		}
		if _, dup := seen[key]; dup {
			return nil, invalidf("duplicate order key %q", key)
		}
		if len(terms) == maxKeys {
			return nil, invalidf("order_by supports at most %d keys", maxKeys)
		}
		seen[key] = struct{}{}
		terms = append(terms, OrderTerm{Key: key, Expr: field.Expr, Desc: desc, Nulls: field.Nulls})
	}

	if len(terms) == 0 {
		field := schema.Fields[schema.DefaultPrimary]
		terms = append(terms, OrderTerm{Key: schema.DefaultPrimary, Expr: field.Expr, Desc: schema.DefaultPrimaryDesc, Nulls: field.Nulls})
		seen[schema.DefaultPrimary] = struct{}{}
	}
	if _, ok := seen[schema.FallbackKey]; !ok {
		field := schema.Fields[schema.FallbackKey]
		terms = append(terms, OrderTerm{Key: schema.FallbackKey, Expr: field.Expr, Desc: schema.FallbackDesc, Nulls: field.Nulls})
	}
	return terms, nil
}

func validateOrderSchema(schema OrderSchema) error {
	if schema.DefaultPrimary == "" {
		return errors.New("order schema default primary key required")
	}
	if schema.FallbackKey == "" {
		return errors.New("order schema fallback key required")
	}
	if _, ok := schema.Fields[schema.DefaultPrimary]; !ok {
		return fmt.Errorf("order key %q missing from schema fields", schema.DefaultPrimary)
	}
	if _, ok := schema.Fields[schema.FallbackKey]; !ok {
		return fmt.Errorf("fallback order key %q missing from schema fields", schema.FallbackKey)
	}
	for key, field := range schema.Fields {
		if field.Expr == "" {
			return fmt.Errorf("order key %q has no expression", key)
		}
	}
	return nil
}

var orderTermsType = reflect.TypeOf([]OrderTerm(nil))

func setOrderTerms(binding any, terms []OrderTerm) error {
	dest, err := structTarget(binding)
	if err != nil {
		return err
	}
	field := dest.FieldByName("Order")
	if !field.IsValid() {
		return fmt.Errorf("params struct %s has no field named %q", dest.Type(), "Order")
	}
	if field.Type() != orderTermsType || !field.CanSet() {
		return fmt.Errorf("params field Order must be a settable []filterexpr.OrderTerm, got %s", field.Type())
	}
	field.Set(reflect.ValueOf(terms))
	return nil
}
