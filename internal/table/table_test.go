package table_test

import (
	"reflect"
	"testing"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

func sample() *table.Table {
	return table.New("sample", []string{"a", "b", "c"}, [][]string{
		{"1", "2", "3"},
		{"4", "5"},
	})
}

func TestNewPadsShortRows(t *testing.T) {
	tbl := sample()
	if got, want := tbl.Rows[1], []string{"4", "5", ""}; !reflect.DeepEqual(got, want) {
		t.Fatalf("row 1 = %v, want %v", got, want)
	}
}

func TestInsertColumnLeavesReceiverUntouched(t *testing.T) {
	tbl := sample()
	out, err := tbl.InsertColumn(1, "x", []string{"p", "q"})
	if err != nil {
		t.Fatalf("InsertColumn: %v", err)
	}

	if got, want := out.Columns, []string{"a", "x", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	if got, want := out.Rows[0], []string{"1", "p", "2", "3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
	if len(tbl.Columns) != 3 || len(tbl.Rows[0]) != 3 {
		t.Fatalf("receiver was modified: %v %v", tbl.Columns, tbl.Rows[0])
	}
}

func TestInsertColumnRejectsWrongLength(t *testing.T) {
	if _, err := sample().InsertColumn(0, "x", []string{"only-one"}); err == nil {
		t.Fatalf("expected error for mismatched value count")
	}
}

func TestProjectRenamesAndCarriesKinds(t *testing.T) {
	tbl := sample().WithKind("c", table.KindDecimal)
	out, err := tbl.Project([]string{"c", "a"}, []string{"C", "A"})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got, want := out.Columns, []string{"C", "A"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	if got, want := out.Rows[0], []string{"3", "1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
	if out.KindOf("C") != table.KindDecimal {
		t.Fatalf("kind of C = %v, want KindDecimal", out.KindOf("C"))
	}
}

func TestDropColumns(t *testing.T) {
	out := sample().DropColumns("b")
	if got, want := out.Columns, []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	if got := out.Value(1, "c"); got != "" {
		t.Fatalf("Value(1, c) = %q, want empty", got)
	}
}
