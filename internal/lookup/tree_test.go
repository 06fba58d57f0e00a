package lookup

import (
	"encoding/json"
	"testing"
)

func TestDecodeJSON_PreservesKeyOrder(t *testing.T) {
	data := []byte(`{"zebra":1,"alpha":2,"meio":{"c":1,"b":2,"a":3}}`)
	tree, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj, ok := tree.(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", tree)
	}
	want := []string{"zebra", "alpha", "meio"}
	got := obj.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, got)
		}
	}

	nested, _ := obj.Get("meio")
	inner := nested.(*Object)
	if inner.Keys()[0] != "c" || inner.Keys()[2] != "a" {
		t.Fatalf("nested order lost: %v", inner.Keys())
	}
}

func TestDecodeJSON_RejectsTrailingData(t *testing.T) {
	cases := []struct {
		data string
		ok   bool
	}{
		{`{"a":1}`, true},
		{`{"a":1}  `, true},
		{`{}garbage`, false},
		{`[1,2]{"b":2}`, false},
		{`"ok" extra`, false},
	}
	for _, tc := range cases {
		_, err := DecodeJSON([]byte(tc.data))
		if tc.ok && err != nil {
			t.Fatalf("decode %s: %v", tc.data, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("decode %s: expected error", tc.data)
		}
	}
}

func TestObject_MarshalJSONRoundTrip(t *testing.T) {
	data := []byte(`{"b":"x","a":[1,2,{"z":true,"y":null}],"n":1.50}`)
	tree, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"b":"x","a":[1,2,{"z":true,"y":null}],"n":1.50}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestObject_SetKeepsPositionOnReplace(t *testing.T) {
	obj := NewObject()
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("a", 3)
	if len(obj.Keys()) != 2 || obj.Keys()[0] != "a" {
		t.Fatalf("replace moved key: %v", obj.Keys())
	}
	v, _ := obj.Get("a")
	if v != 3 {
		t.Fatalf("expected 3, got %v", v)
	}
}

func TestObject_Delete(t *testing.T) {
	obj := NewObject()
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("c", 3)
	obj.Delete("b")
	if len(obj.Keys()) != 2 || obj.Keys()[1] != "c" {
		t.Fatalf("unexpected keys after delete: %v", obj.Keys())
	}
	if _, ok := obj.Get("b"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestEqual(t *testing.T) {
	a, _ := DecodeJSON([]byte(`{"x":1,"y":["a","b"]}`))
	b, _ := DecodeJSON([]byte(`{"y":["a","b"],"x":1}`))
	c, _ := DecodeJSON([]byte(`{"x":1,"y":["b","a"]}`))

	if !Equal(a, b) {
		t.Fatal("objects differing only in key order should be equal")
	}
	if Equal(a, c) {
		t.Fatal("arrays are ordered; reordered arrays must not be equal")
	}
	if !Equal("x", "x") || Equal("x", "y") {
		t.Fatal("scalar equality broken")
	}
	if Equal(json.Number("1"), json.Number("2")) {
		t.Fatal("numbers 1 and 2 equal")
	}
}

func TestClone_DoesNotShareSubtrees(t *testing.T) {
	orig, _ := DecodeJSON([]byte(`{"a":{"b":"c"}}`))
	cp := Clone(orig).(*Object)
	inner, _ := cp.Get("a")
	inner.(*Object).Set("b", "mutated")

	origInner, _ := orig.(*Object).Get("a")
	v, _ := origInner.(*Object).Get("b")
	if v != "c" {
		t.Fatalf("clone shares state with original: %v", v)
	}
}
