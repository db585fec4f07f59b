package core

import (
	"errors"
	"testing"
	"time"
)

func TestField_StringValue(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"String field", String("k", "hello"), "hello"},
		{"Int field", Int("k", 42), "42"},
		{"Int64 field", Int64("k", 1234567890), "1234567890"},
		{"Bool field (true)", Bool("k", true), "true"},
		{"Bool field (false)", Bool("k", false), "false"},
		{"Float64 field", Float64("k", 3.14), "3.14"},
		{"Duration field", Duration("k", 5*time.Second), "5s"},
		{"Error field", Err(errors.New("an error occurred")), "an error occurred"},
		{"Nil error field", Err(nil), ""},
		{"Any field", Any("k", []int{1, 2}), "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.StringValue(); got != tt.want {
				t.Errorf("Field.StringValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestField_Value(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if v := Int("k", 7).Value(); v != 7 {
		t.Errorf("Int Value() = %#v", v)
	}
	if v := Int64("k", 7).Value(); v != int64(7) {
		t.Errorf("Int64 Value() = %#v", v)
	}
	if v := Bool("k", true).Value(); v != true {
		t.Errorf("Bool Value() = %#v", v)
	}
	if v := Duration("k", time.Second).Value(); v != time.Second {
		t.Errorf("Duration Value() = %#v", v)
	}
	if v := Time("k", ts).Value().(time.Time); !v.Equal(ts) {
		t.Errorf("Time Value() = %v, want %v", v, ts)
	}
	if v := Err(errors.New("x")).Value(); v != "x" {
		t.Errorf("Err Value() = %#v", v)
	}
}

func BenchmarkFieldStringValue(b *testing.B) {
	fields := []Field{
		{Type: StringType, Str: "test"},
		{Type: IntType, Int64: 42},
		{Type: BoolType, Int64: 1},
		{Type: Float64Type, Float64: 3.14},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, f := range fields {
			_ = f.StringValue()
		}
	}
}
