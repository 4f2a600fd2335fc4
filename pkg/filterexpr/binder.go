package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ErrInvalid marks errors caused by caller input rather than by a broken schema.
var ErrInvalid = errors.New("invalid filter or order_by")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Bind parses the request filter and order_by and populates the params struct.
// The resolved ordering is stored in the params field named Order, of type []OrderTerm.
func Bind[M Msg, P any](msg M, binding *P, schema ResourceSchema) error {
	if binding == nil {
		return errors.New("binding must not be nil")
	}
	if err := BindFilter(msg.GetFilter(), binding, schema.Filter); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	terms, err := ParseOrderBy(msg.GetOrderBy(), schema.Order)
	if err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	return setOrderTerms(binding, terms)
}

// BindFilter parses a CEL conjunction of simple predicates and assigns each
// predicate's literal to the params field the schema names for it.
func BindFilter(filter string, binding any, fields map[string]FilterField) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if len(fields) == 0 {
		return errors.New("filter schema has no fields defined")
	}
	dest, err := structTarget(binding)
	if err != nil {
		return err
	}

	preds, err := parsePredicates(filter, fields)
	if err != nil {
		return err
	}
	for _, pred := range preds {
		if err := pred.apply(dest, fields[pred.Field]); err != nil {
			return err
		}
	}
	return nil
}

type predicate struct {
	Field string
	Op    Op
	Value any
}

func (p predicate) apply(dest reflect.Value, rule FilterField) error {
	target, ok := rule.Ops[p.Op]
	if !ok {
		return invalidf("operator %q is not allowed for field %q", string(p.Op), p.Field)
	}
	if err := checkLiteral(rule.Kind, p.Op, p.Value); err != nil {
		return invalidf("field %q: %v", p.Field, err)
	}
	field := dest.FieldByName(target)
	if !field.IsValid() {
		return fmt.Errorf("params struct %s has no field named %q", dest.Type(), target)
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field %q on params struct", target)
	}
	if rule.Setter != nil {
		if field.Kind() == reflect.Ptr && field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		if err := rule.Setter(field, p.Value); err != nil {
			return fmt.Errorf("setter for field %q failed: %w", target, err)
		}
		return nil
	}
	if err := assign(field, p.Value); err != nil {
		return fmt.Errorf("assign field %q: %w", target, err)
	}
	return nil
}

func parsePredicates(filter string, fields map[string]FilterField) ([]predicate, error) {
	env, err := newEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, invalidf("%v", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert AST: %w", err)
	}

	var conjuncts []*exprpb.Expr
	if err := flattenAnd(parsed.GetExpr(), &conjuncts); err != nil {
		return nil, err
	}
	preds := make([]predicate, 0, len(conjuncts))
	for _, expr := range conjuncts {
		pred, err := toPredicate(expr)
		if err != nil {
			return nil, err
		}
		if _, ok := fields[pred.Field]; !ok {
			return nil, invalidf("field %q is not allowed", pred.Field)
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func newEnv(fields map[string]FilterField) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		var t *cel.Type
		switch rule.Kind {
		case KindString:
			t = cel.StringType
		case KindNumber:
			t = cel.DoubleType
		case KindTimestamp:
			t = cel.TimestampType
		default:
			return nil, fmt.Errorf("field %q: unsupported kind %s", name, rule.Kind)
		}
		opts = append(opts, cel.Variable(name, t))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

// flattenAnd collects the operands of nested && calls. Any other logical
// operator is rejected.
func flattenAnd(expr *exprpb.Expr, out *[]*exprpb.Expr) error {
	if expr == nil {
		return invalidf("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		*out = append(*out, expr)
		return nil
	}
	switch call.Function {
	case "_&&_":
		if call.Target != nil || len(call.Args) < 2 {
			return invalidf("logical AND must have at least two operands")
		}
		for _, arg := range call.Args {
			if err := flattenAnd(arg, out); err != nil {
				return err
			}
		}
		return nil
	case "_||_", "_?_:_", "!_", "!":
		return invalidf("logical operator %q is not supported; only AND is allowed", call.Function)
	default:
		*out = append(*out, expr)
		return nil
	}
}

var comparisonOps = map[string]Op{
	"_==_": OpEQ,
	"_>_":  OpGT,
	"_>=_": OpGTE,
	"_<_":  OpLT,
	"_<=_": OpLTE,
}

func toPredicate(expr *exprpb.Expr) (predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return predicate{}, invalidf("expected a comparison or function call")
	}
	if op, ok := comparisonOps[call.Function]; ok {
		if call.Target != nil || len(call.Args) != 2 {
			return predicate{}, invalidf("operator %q expects two operands", string(op))
		}
		return buildPredicate(op, call.Args[0], call.Args[1])
	}

	switch call.Function {
	case "@in", "_in_":
		if call.Target != nil || len(call.Args) != 2 {
			return predicate{}, invalidf("in operator expects two operands")
		}
		return buildPredicate(OpIN, call.Args[0], call.Args[1])
	case "startsWith":
		if call.Target == nil || len(call.Args) != 1 {
			return predicate{}, invalidf("startsWith must be called on a field with one argument")
		}
		pred, err := buildPredicate(OpSW, call.Target, call.Args[0])
		if err != nil {
			return predicate{}, err
		}
		if _, ok := pred.Value.(string); !ok {
			return predicate{}, invalidf("startsWith requires a string literal argument")
		}
		return pred, nil
	default:
		return predicate{}, invalidf("function %q is not supported", call.Function)
	}
}

func buildPredicate(op Op, fieldExpr, valueExpr *exprpb.Expr) (predicate, error) {
	ident := fieldExpr.GetIdentExpr()
	if ident == nil {
		return predicate{}, invalidf("left-hand side must be a field name")
	}
	value, err := literal(valueExpr)
	if err != nil {
		return predicate{}, err
	}
	return predicate{Field: ident.GetName(), Op: op, Value: value}, nil
}

func structTarget(binding any) (reflect.Value, error) {
	rv := reflect.ValueOf(binding)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, errors.New("binding must be a non-nil pointer")
	}
	dest := rv.Elem()
	if dest.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("binding must point to a struct")
	}
	return dest, nil
}
