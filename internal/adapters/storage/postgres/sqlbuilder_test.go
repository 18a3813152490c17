package postgres

import (
	"strings"
	"testing"

	"petshop-api/internal/platform/patch"
)

func TestWhere_JoinsConditionsWithPlaceholders(t *testing.T) {
	var a args
	w := newWhere(&a)
	if w.String() != "" {
		t.Fatalf("empty where must render nothing")
	}

	w.and("a.animal_id = %s", int64(3))
	w.and("a.status = %s", "Scheduled")

	if got := w.String(); got != " WHERE a.animal_id = $1 AND a.status = $2" {
		t.Fatalf("unexpected where: %q", got)
	}
	if len(a) != 2 || a[0] != int64(3) || a[1] != "Scheduled" {
		t.Fatalf("unexpected args: %v", a)
	}
}

func TestArgs_ListContinuesNumbering(t *testing.T) {
	var a args
	a.add("x")
	if got := a.list([]int64{4, 5, 6}); got != "$2, $3, $4" {
		t.Fatalf("unexpected list: %q", got)
	}
}

func TestUpdate_OnlyPresentFields(t *testing.T) {
	u := newUpdate("clients", []string{"name", "phone", "address"})
	setField(u, "name", patch.Value("Ana"))
	setField(u, "phone", patch.Field[string]{})
	setField(u, "address", patch.Null[string]())

	q, qargs := u.build("id", int64(9))
	if q != "UPDATE clients SET name = $1, address = $2 WHERE id = $3" {
		t.Fatalf("unexpected query: %q", q)
	}
	if len(qargs) != 3 || qargs[0] != "Ana" || qargs[1] != nil || qargs[2] != int64(9) {
		t.Fatalf("unexpected args: %v", qargs)
	}
}

func TestUpdate_RejectsColumnOutsideAllowList(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, `"created_at"`) {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()

	u := newUpdate("appointments", appointmentColumns)
	setField(u, "created_at", patch.Value("2026-01-01"))
}

func TestLimitOrDefault(t *testing.T) {
	cases := map[int]int{0: 100, -1: 100, 20: 20, 500: 500, 10000: 500}
	for in, want := range cases {
		if got := limitOrDefault(in); got != want {
			t.Fatalf("limitOrDefault(%d) = %d, want %d", in, got, want)
		}
	}
}
