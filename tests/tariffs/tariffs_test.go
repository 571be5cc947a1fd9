package tariffs_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/quaydesk/quay/internal/tariffs"
	"github.com/quaydesk/quay/pkg/query"
)

func ptr[T any](v T) *T {
	return &v
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"85167100", "85167100"},
		{"8516.71.00", "85167100"},
		{"8516 71 00", "85167100"},
		{"8516-71-00", "85167100"},
		{" 8516.71 ", "851671"},
		{"ch. 85", "85"},
		{"", ""},
		{"no digits", ""},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			if got := tariffs.NormalizeCode(tc.input); got != tc.want {
				t.Errorf("NormalizeCode(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestHeading(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"85167100", "8516"},
		{"8516", "8516"},
		{"85", "85"},
		{"", ""},
	}

	for _, tc := range tests {
		c := tariffs.Code{Code: tc.code}
		if got := c.Heading(); got != tc.want {
			t.Errorf("Heading() of %q = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", tariffs.ErrNotFound, http.StatusNotFound},
		{"invalid code", tariffs.ErrInvalidCode, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("lookup: %w", tariffs.ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tariffs.MapHTTPStatus(tc.err); got != tc.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		f := tariffs.FiltersFromQuery(url.Values{})
		if f.Chapter != nil || f.Prefix != nil {
			t.Errorf("filters = %+v, want zero value", f)
		}
	})

	t.Run("chapter and prefix", func(t *testing.T) {
		values := url.Values{}
		values.Set("chapter", "85")
		values.Set("prefix", "8516")

		f := tariffs.FiltersFromQuery(values)
		if f.Chapter == nil || *f.Chapter != "85" {
			t.Errorf("chapter = %v, want 85", f.Chapter)
		}
		if f.Prefix == nil || *f.Prefix != "8516" {
			t.Errorf("prefix = %v, want 8516", f.Prefix)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	proj := query.
		NewProjectionMap("public", "tariff_codes", "t").
		Project("code", "Code").
		Project("chapter", "Chapter")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := tariffs.Filters{}
		f.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT t.code, t.chapter FROM public.tariff_codes t"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("chapter equals filter", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := tariffs.Filters{Chapter: ptr("85")}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 1 {
			t.Fatalf("args length = %d, want 1", len(args))
		}
		chapter, ok := args[0].(*string)
		if !ok || *chapter != "85" {
			t.Errorf("args[0] = %v, want pointer to 85", args[0])
		}
	})

	t.Run("prefix is normalized before matching", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := tariffs.Filters{Prefix: ptr("8516.71")}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 1 {
			t.Fatalf("args length = %d, want 1", len(args))
		}
		if args[0] != "851671%" {
			t.Errorf("args[0] = %v, want 851671%%", args[0])
		}
	})

	t.Run("empty prefix ignored", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := tariffs.Filters{Prefix: ptr("")}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})
}
