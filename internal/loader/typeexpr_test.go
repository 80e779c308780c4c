package loader

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	w "github.com/Alia5/wit-bindgen-scala/witgraph"
)

func namesResolver(names map[string]w.TypeID) resolver {
	return func(name string) (w.TypeID, error) {
		if id, ok := names[name]; ok {
			return id, nil
		}
		return 0, fmt.Errorf("unknown %q", name)
	}
}

func TestParseTypeExpr(t *testing.T) {
	resolve := namesResolver(map[string]w.TypeID{
		"point":                    1,
		"blob":                     2,
		"wasi:io/streams@0.2.0.io": 3,
	})

	tests := []struct {
		src  string
		want w.TypeRef
	}{
		{"u32", w.Prim(w.U32)},
		{"  string ", w.Prim(w.String)},
		{"point", w.Ref(1)},
		{"wasi:io/streams@0.2.0.io", w.Ref(3)},
		{"list<u8>", w.ListOf(w.Prim(w.U8))},
		{"option<list<point>>", w.OptionOf(w.ListOf(w.Ref(1)))},
		{"result", w.ResultOf(nil, nil)},
		{"result<s32>", w.ResultOf(w.Ptr(w.Prim(w.S32)), nil)},
		{"result<_, string>", w.ResultOf(nil, w.Ptr(w.Prim(w.String)))},
		{"result<point,string>", w.ResultOf(w.Ptr(w.Ref(1)), w.Ptr(w.Prim(w.String)))},
		{"tuple<>", w.TupleOf()},
		{"tuple<bool, char, f64>", w.TupleOf(w.Prim(w.Bool), w.Prim(w.Char), w.Prim(w.F64))},
		{"own<blob>", w.OwnOf(2)},
		{"borrow< blob >", w.BorrowOf(2)},
		{"future", w.FutureOf(nil)},
		{"stream<u8>", w.StreamOf(w.Ptr(w.Prim(w.U8)))},
		{"error-context", w.ErrorContext()},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseTypeExpr(tt.src, resolve)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTypeExprErrors(t *testing.T) {
	resolve := namesResolver(map[string]w.TypeID{"point": 1})

	tests := []struct {
		src     string
		message string
	}{
		{"", "expected type, found end of input"},
		{"list<u8", "expected '>', found end of input"},
		{"list u8", "expected '<', found 'u'"},
		{"u8 u16", `unexpected "u16"`},
		{"tuple<u8 u16>", "expected ','"},
		{"option<>", "expected type, found '>'"},
		{"list<nope>", `unknown "nope"`},
		{"own<>", `unknown ""`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ParseTypeExpr(tt.src, resolve)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
