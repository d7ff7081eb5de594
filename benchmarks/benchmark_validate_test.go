package cifdict_test

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	cifdict "github.com/reoring/cifdict"
	"github.com/reoring/cifdict/source/mmjson"
)

// ---- Helpers ----

func atomSiteDictionary(tb testing.TB) *cifdict.Dictionary {
	tb.Helper()
	d, err := cifdict.NewBuilder().
		DeclareCategory("atom_site", true).
		DeclareKeyword("atom_site", "id", true, cifdict.WithTypeCode("int")).
		DeclareKeyword("atom_site", "type_symbol", true, cifdict.WithEnumeration("C", "N", "O", "S")).
		DeclareKeyword("atom_site", "cartn_x", true, cifdict.WithTypeCode("float")).
		DeclareKeyword("atom_site", "occupancy", false, cifdict.WithTypeCode("float")).
		DefineItemType("int", `[+-]?[0-9]+`).
		DefineItemType("float", `-?(([0-9]+)[.]?|([0-9]*[.][0-9]+))([(][0-9]+[)])?([eE][+-]?[0-9]+)?`).
		Build()
	if err != nil {
		tb.Fatalf("dictionary build failed: %v", err)
	}
	return d
}

var symbols = []string{"C", "N", "O", "S"}

// generateAtomSiteCIF returns one data block with a loop of n atom_site rows.
func generateAtomSiteCIF(n int) []byte {
	var buf bytes.Buffer
	buf.Grow(n * 32)
	buf.WriteString("data_bench\nloop_\n_atom_site.id\n_atom_site.type_symbol\n_atom_site.Cartn_x\n_atom_site.occupancy\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "%d %s %d.%03d 1.00\n", i+1, symbols[i%len(symbols)], i%100, i%1000)
	}
	return buf.Bytes()
}

// generateAtomSiteMMJSON returns the same content as generateAtomSiteCIF in
// mmJSON.
func generateAtomSiteMMJSON(n int) []byte {
	var id, sym, x, occ bytes.Buffer
	for i := 0; i < n; i++ {
		if i > 0 {
			id.WriteByte(',')
			sym.WriteByte(',')
			x.WriteByte(',')
			occ.WriteByte(',')
		}
		id.WriteString(strconv.Itoa(i + 1))
		sym.WriteString(`"` + symbols[i%len(symbols)] + `"`)
		fmt.Fprintf(&x, "%d.%03d", i%100, i%1000)
		occ.WriteString("1.00")
	}
	return []byte(fmt.Sprintf(`{"data_bench":{"atom_site":{"id":[%s],"type_symbol":[%s],"Cartn_x":[%s],"occupancy":[%s]}}}`,
		id.String(), sym.String(), x.String(), occ.String()))
}

// ---- Benchmarks ----

func BenchmarkValidate_CIF(b *testing.B) {
	d := atomSiteDictionary(b)
	ctx := context.Background()
	for _, n := range []int{100, 10000} {
		data := generateAtomSiteCIF(n)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if err := cifdict.Validate(ctx, d, cifdict.CIFBytes(data)); err != nil {
					b.Fatalf("validate: %v", err)
				}
			}
		})
	}
}

func BenchmarkValidate_MMJSON(b *testing.B) {
	d := atomSiteDictionary(b)
	ctx := context.Background()
	for _, n := range []int{100, 10000} {
		data := generateAtomSiteMMJSON(n)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if err := cifdict.Validate(ctx, d, mmjson.NewBytes(data)); err != nil {
					b.Fatalf("validate: %v", err)
				}
			}
		})
	}
}

func BenchmarkValidate_DuplicateEnforcement(b *testing.B) {
	d := atomSiteDictionary(b)
	ctx := context.Background()
	data := generateAtomSiteCIF(10000)
	opt := cifdict.ValidateOpt{Strictness: cifdict.Strictness{OnDuplicateTag: cifdict.Error}}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		if err := cifdict.Validate(ctx, d, cifdict.CIFBytes(data), opt); err != nil {
			b.Fatalf("validate: %v", err)
		}
	}
}
