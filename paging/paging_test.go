package paging

import (
	"fmt"
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 15, 10, 30, 0, 123456789, time.UTC)
	cursor := EncodeCursor(ts, "42")

	gotTime, gotKey, err := DecodeCursor(cursor)
	if err != nil {
		t.Fatalf("DecodeCursor() error = %v", err)
	}
	if !gotTime.Equal(ts) {
		t.Errorf("time = %v, want %v", gotTime, ts)
	}
	if gotKey != "42" {
		t.Errorf("key = %q, want %q", gotKey, "42")
	}
}

func TestDecodeCursorMalformed(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"no separator", "MjAyNi0wMS0xNQ=="},
		{"bad timestamp", "bm90LWEtdGltZXwx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeCursor(tt.cursor); err == nil {
				t.Errorf("DecodeCursor(%q) expected error, got nil", tt.cursor)
			}
		})
	}
}

func TestNormalizeParams(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-5, 20},
		{50, 50},
		{100, 100},
		{101, 20},
	}

	for _, tt := range tests {
		got := NormalizeParams(Params{Limit: tt.limit})
		if got.Limit != tt.want {
			t.Errorf("NormalizeParams(limit=%d) = %d, want %d", tt.limit, got.Limit, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]int, 30)
	for i := range rows {
		rows[i] = i
	}

	fn := func(cursor string, limit int) ([]int, int, string, error) {
		if limit > len(rows) {
			limit = len(rows)
		}
		return rows[:limit], len(rows), "next-token", nil
	}

	result, err := Paginate(Params{Limit: 10}, fn)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}

	if len(result.Items) != 10 {
		t.Errorf("len(items) = %d, want 10", len(result.Items))
	}
	if !result.HasNextPage {
		t.Error("HasNextPage = false, want true")
	}
	if result.NextCursor != "next-token" {
		t.Errorf("NextCursor = %q, want %q", result.NextCursor, "next-token")
	}
	if result.Total != 30 {
		t.Errorf("Total = %d, want 30", result.Total)
	}
}

func TestPaginateLastPage(t *testing.T) {
	fn := func(cursor string, limit int) ([]int, int, string, error) {
		return []int{1, 2, 3}, 3, "stale-token", nil
	}

	result, err := Paginate(Params{Limit: 10}, fn)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}

	if result.HasNextPage {
		t.Error("HasNextPage = true, want false")
	}
	if result.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty on last page", result.NextCursor)
	}
}

func TestPaginateEmpty(t *testing.T) {
	fn := func(cursor string, limit int) ([]int, int, string, error) {
		return nil, 0, "", nil
	}

	result, err := Paginate(Params{Limit: 10}, fn)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}

	if result.Items == nil {
		t.Error("Items = nil, want empty slice")
	}
	if len(result.Items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(result.Items))
	}
}

func TestPaginateError(t *testing.T) {
	fn := func(cursor string, limit int) ([]int, int, string, error) {
		return nil, 0, "", fmt.Errorf("boom")
	}

	if _, err := Paginate(Params{Limit: 10}, fn); err == nil {
		t.Error("Paginate() expected error, got nil")
	}
}
