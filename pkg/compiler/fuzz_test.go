package compiler_test

import (
	"testing"

	"github.com/agenthands/stackc/pkg/compiler"
	"github.com/agenthands/stackc/pkg/compiler/diag"
)

func FuzzCompile(f *testing.F) {
	f.Add("2 3 + dump")
	f.Add("1 if 10 dump else 20 dump end")
	f.Add("0 while dup 3 < do dup dump 1 + end drop")
	f.Add("rem nothing here\nend")
	f.Add("while do end")

	c := compiler.New(nil)
	f.Fuzz(func(t *testing.T, src string) {
		asm, err := c.Compile("fuzz.sc", []byte(src))
		if err != nil {
			if diag.CodeOf(err) == "" {
				t.Fatalf("error without diagnostic code: %v", err)
			}
			if diag.Is(err, diag.CodeMalformedStream) {
				t.Fatalf("parser accepted a stream the emitter rejects: %v", err)
			}
			if asm != "" {
				t.Fatalf("assembly returned alongside error")
			}
			return
		}

		if _, err := c.Bytecode("fuzz.sc", []byte(src)); err != nil {
			t.Fatalf("assembly succeeded but bytecode failed: %v", err)
		}
	})
}
