package patch

import (
	"encoding/json"
	"testing"
)

type petPatch struct {
	Name  Field[string] `json:"name"`
	Notes Field[string] `json:"notes"`
	Owner Field[int64]  `json:"owner"`
}

func TestField_UnmarshalDistinguishesAbsentNullAndValue(t *testing.T) {
	var p petPatch
	if err := json.Unmarshal([]byte(`{"name":"Milo","notes":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.Name.Set || p.Name.Null || p.Name.Value != "Milo" {
		t.Fatalf("expected name set to Milo, got %#v", p.Name)
	}
	if !p.Notes.Set || !p.Notes.Null {
		t.Fatalf("expected notes explicitly null, got %#v", p.Notes)
	}
	if p.Owner.Set {
		t.Fatalf("expected owner absent, got %#v", p.Owner)
	}
}

func TestField_InvalidValue(t *testing.T) {
	var p petPatch
	if err := json.Unmarshal([]byte(`{"owner":"abc"}`), &p); err == nil {
		t.Fatalf("expected error decoding string into int64 field")
	}
}

func TestField_Helpers(t *testing.T) {
	if Value(3).Ptr() == nil || *Value(3).Ptr() != 3 {
		t.Fatalf("expected pointer to value")
	}
	if Null[int]().Ptr() != nil {
		t.Fatalf("null must have nil pointer")
	}
	var unset Field[int]
	if unset.HasValue() || unset.Ptr() != nil {
		t.Fatalf("unset must have no value")
	}
}
