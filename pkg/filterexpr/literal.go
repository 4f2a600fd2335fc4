package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

var timeType = reflect.TypeOf(time.Time{})

// literal converts a constant, a homogeneous list, or a timestamp() call.
// Numbers become float64, lists become []string or []float64.
func literal(expr *exprpb.Expr) (any, error) {
	if c := expr.GetConstExpr(); c != nil {
		return constant(c)
	}
	if list := expr.GetListExpr(); list != nil {
		return listLiteral(list.GetElements())
	}
	if call := expr.GetCallExpr(); call != nil && call.Function == "timestamp" {
		return timestampLiteral(call)
	}
	return nil, invalidf("right-hand side must be a literal, list literal, or timestamp() call")
}

func constant(c *exprpb.Constant) (any, error) {
	switch c.ConstantKind.(type) {
	case *exprpb.Constant_StringValue:
		return c.GetStringValue(), nil
	case *exprpb.Constant_Int64Value:
		return float64(c.GetInt64Value()), nil
	case *exprpb.Constant_Uint64Value:
		return float64(c.GetUint64Value()), nil
	case *exprpb.Constant_DoubleValue:
		return c.GetDoubleValue(), nil
	default:
		return nil, invalidf("literal type %T is not supported", c.ConstantKind)
	}
}

func listLiteral(elements []*exprpb.Expr) (any, error) {
	var strs []string
	var nums []float64
	for i, elem := range elements {
		c := elem.GetConstExpr()
		if c == nil {
			return nil, invalidf("list element %d must be a literal", i)
		}
		v, err := constant(c)
		if err != nil {
			return nil, err
		}
		switch val := v.(type) {
		case string:
			strs = append(strs, val)
		case float64:
			nums = append(nums, val)
		}
		if len(strs) > 0 && len(nums) > 0 {
			return nil, invalidf("list literal elements must share one type")
		}
	}
	if len(nums) > 0 {
		return nums, nil
	}
	if strs == nil {
		strs = []string{}
	}
	return strs, nil
}

func timestampLiteral(call *exprpb.Expr_Call) (any, error) {
	if call.Target != nil || len(call.Args) != 1 {
		return nil, invalidf("timestamp() expects a single string argument")
	}
	arg := call.Args[0].GetConstExpr()
	if arg == nil || arg.GetStringValue() == "" {
		return nil, invalidf("timestamp() argument must be a non-empty string literal")
	}
	raw := arg.GetStringValue()
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return nil, invalidf("timestamp literal %q is not RFC3339", raw)
}

func checkLiteral(kind ValueKind, op Op, value any) error {
	if op == OpIN {
		return checkList(kind, value)
	}
	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindTimestamp:
		if _, ok := value.(time.Time); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	default:
		return fmt.Errorf("unsupported field kind %s", kind)
	}
	return nil
}

func checkList(kind ValueKind, value any) error {
	switch kind {
	case KindString:
		list, ok := value.([]string)
		if !ok {
			return fmt.Errorf("expected list of %s literals", kind)
		}
		if len(list) == 0 {
			return errors.New("list literal must not be empty")
		}
		for _, item := range list {
			if item == "" {
				return errors.New("list literal must not contain empty strings")
			}
		}
	case KindNumber:
		list, ok := value.([]float64)
		if !ok || len(list) == 0 {
			return fmt.Errorf("expected non-empty list of %s literals", kind)
		}
	default:
		return fmt.Errorf("in is not supported for %s fields", kind)
	}
	return nil
}

func assign(field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return assign(field.Elem(), value)
	}
	if field.Kind() == reflect.Interface {
		field.Set(reflect.ValueOf(value))
		return nil
	}

	switch v := value.(type) {
	case string:
		if field.Kind() != reflect.String {
			return fmt.Errorf("expected string-compatible destination, got %s", field.Kind())
		}
		field.SetString(v)
	case float64:
		return assignNumber(field, v)
	case time.Time:
		if field.Type() != timeType {
			return fmt.Errorf("expected time.Time destination, got %s", field.Type())
		}
		field.Set(reflect.ValueOf(v))
	case []string:
		if field.Kind() != reflect.Slice || field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("expected []string destination, got %s", field.Type())
		}
		out := reflect.MakeSlice(field.Type(), len(v), len(v))
		for i, s := range v {
			out.Index(i).SetString(s)
		}
		field.Set(out)
	case []float64:
		if field.Kind() != reflect.Slice {
			return fmt.Errorf("expected slice destination, got %s", field.Type())
		}
		out := reflect.MakeSlice(field.Type(), len(v), len(v))
		for i, n := range v {
			if err := assignNumber(out.Index(i), n); err != nil {
				return err
			}
		}
		field.Set(out)
	default:
		return fmt.Errorf("unsupported literal type %T", value)
	}
	return nil
}

func assignNumber(field reflect.Value, value float64) error {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		field.SetFloat(value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if math.Trunc(value) != value {
			return invalidf("value %v must be an integer", value)
		}
		if value > math.MaxInt64 || value < math.MinInt64 || field.OverflowInt(int64(value)) {
			return invalidf("value %v overflows %s", value, field.Type())
		}
		field.SetInt(int64(value))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if math.Trunc(value) != value || value < 0 {
			return invalidf("value %v must be a non-negative integer", value)
		}
		if value > math.MaxUint64 || field.OverflowUint(uint64(value)) {
			return invalidf("value %v overflows %s", value, field.Type())
		}
		field.SetUint(uint64(value))
		return nil
	default:
		return fmt.Errorf("numeric assignment requires integer or float field, got %s", field.Kind())
	}
}
