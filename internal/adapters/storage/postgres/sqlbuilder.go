package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"petshop-api/internal/platform/patch"
)

// args acumula parámetros posicionales; add devuelve el placeholder ($n).
// Los valores nunca se interpolan en el SQL.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// list devuelve "$n, $n+1, ..." para IN (...).
func (a *args) list(ids []int64) string {
	ps := make([]string, 0, len(ids))
	for _, id := range ids {
		ps = append(ps, a.add(id))
	}
	return strings.Join(ps, ", ")
}

// where arma condiciones AND; cond lleva un %s donde va el placeholder.
type where struct {
	args  *args
	conds []string
}

func newWhere(a *args) *where {
	return &where{args: a}
}

func (w *where) and(cond string, v any) {
	w.conds = append(w.conds, fmt.Sprintf(cond, w.args.add(v)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// update arma UPDATE ... SET solo con columnas de la allow-list de la tabla.
type update struct {
	table   string
	allowed map[string]struct{}
	sets    []string
	args    args
}

func newUpdate(table string, columns []string) *update {
	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return &update{table: table, allowed: allowed}
}

// set entra en pánico con una columna fuera de la allow-list: es un bug del repo, no input del usuario.
func (u *update) set(column string, v any) {
	if _, ok := u.allowed[column]; !ok {
		panic(fmt.Sprintf("postgres: column %q is not updatable on %s", column, u.table))
	}
	u.sets = append(u.sets, column+" = "+u.args.add(v))
}

func (u *update) empty() bool {
	return len(u.sets) == 0
}

// build devuelve "UPDATE t SET ... WHERE key = $n"; el caller puede agregar RETURNING.
func (u *update) build(keyColumn string, key any) (string, []any) {
	p := u.args.add(key)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", u.table, strings.Join(u.sets, ", "), keyColumn, p)
	return q, u.args
}

// setField escribe la columna solo si el campo vino; null => NULL.
func setField[T any](u *update, column string, f patch.Field[T]) {
	setFieldAs(u, column, f, func(v T) any { return v })
}

// setFieldAs es setField con conversión (p.ej. tipos con nombre a string).
func setFieldAs[T any](u *update, column string, f patch.Field[T], conv func(T) any) {
	if !f.Set {
		return
	}
	if f.Null {
		u.set(column, nil)
		return
	}
	u.set(column, conv(f.Value))
}

const (
	defaultLimit = 100
	maxLimit     = 500
)

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
