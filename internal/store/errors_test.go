package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"restaurant_map/internal/models"
)

func TestTranslatePQ(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantInvalid bool
	}{
		{"not null violation", &pq.Error{Code: "23502", Message: "null value in column"}, true},
		{"invalid geometry", fmt.Errorf("insert: %w", &pq.Error{Code: "22023", Message: "parse error"}), true},
		{"connection failure", &pq.Error{Code: "08006", Message: "connection failure"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translatePQ("create", tc.err)
			if tc.wantInvalid {
				if !errors.Is(got, models.ErrInvalidArgument) {
					t.Errorf("translatePQ = %v, want ErrInvalidArgument", got)
				}
				return
			}
			var se *models.StoreError
			if !errors.As(got, &se) || se.Op != "create" {
				t.Errorf("translatePQ = %v, want *StoreError for create", got)
			}
		})
	}
}

func TestTranslateNil(t *testing.T) {
	if err := translatePQ("get", nil); err != nil {
		t.Errorf("translatePQ(nil) = %v", err)
	}
	if err := translateElastic("get", nil); err != nil {
		t.Errorf("translateElastic(nil) = %v", err)
	}
}
