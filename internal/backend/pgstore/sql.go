package pgstore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rpattn/adminkit/internal/backend"
)

var fieldPart = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// whereBuilder accumulates a WHERE clause and its positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) String() string {
	return strings.Join(w.clauses, " AND ")
}

// jsonPath renders a dotted field as a Postgres text array literal. Field
// parts are restricted to identifier characters since they are inlined.
func jsonPath(field string) (string, error) {
	parts := strings.Split(field, ".")
	for _, p := range parts {
		if !fieldPart.MatchString(p) {
			return "", fmt.Errorf("%w: invalid field %q", backend.ErrUnsupportedLookup, field)
		}
	}
	return "'{" + strings.Join(parts, ",") + "}'", nil
}

func (w *whereBuilder) addLookup(l backend.Lookup) error {
	path, err := jsonPath(l.Field)
	if err != nil {
		return err
	}
	text := "data #>> " + path

	switch l.Operation {
	case backend.OpExact, backend.OpEquals:
		w.clauses = append(w.clauses, fmt.Sprintf("%s = %s", text, w.arg(l.Value)))
	case backend.OpIExact:
		w.clauses = append(w.clauses, fmt.Sprintf("lower(%s) = lower(%s)", text, w.arg(l.Value)))
	case backend.OpContains:
		w.clauses = append(w.clauses, fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, text, w.arg("%"+escapeLike(l.Value)+"%")))
	case backend.OpIContains:
		w.clauses = append(w.clauses, fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, text, w.arg("%"+escapeLike(l.Value)+"%")))
	case backend.OpStartsWith:
		w.clauses = append(w.clauses, fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, text, w.arg(escapeLike(l.Value)+"%")))
	case backend.OpIn:
		values := l.Values()
		if len(values) == 0 {
			w.clauses = append(w.clauses, "FALSE")
			return nil
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = w.arg(v)
		}
		w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", text, strings.Join(placeholders, ", ")))
	case backend.OpGT, backend.OpGTE, backend.OpLT, backend.OpLTE:
		w.clauses = append(w.clauses, w.comparison(path, text, comparators[l.Operation], l.Value))
	default:
		return fmt.Errorf("%w %q on %s", backend.ErrUnsupportedLookup, l.Operation, l.Field)
	}
	return nil
}

var comparators = map[backend.Operation]string{
	backend.OpGT:  ">",
	backend.OpGTE: ">=",
	backend.OpLT:  "<",
	backend.OpLTE: "<=",
}

// comparison orders json numbers numerically when the target is a number
// and falls back to text ordering otherwise.
func (w *whereBuilder) comparison(path, text, op, value string) string {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Sprintf("%s %s %s", text, op, w.arg(value))
	}
	return fmt.Sprintf(
		"CASE WHEN jsonb_typeof(data #> %s) = 'number' THEN (%s)::numeric %s %s ELSE %s %s %s END",
		path, text, op, w.arg(n), text, op, w.arg(value),
	)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
