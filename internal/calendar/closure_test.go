package calendar

import (
	"reflect"
	"testing"
	"time"

	"github.com/region23/calendar/pkg/errors"
)

func TestClosureRequest_Validate(t *testing.T) {
	valid := ClosureRequest{
		Resource: "Ressource1",
		Start:    date(2024, 11, 1),
		End:      date(2024, 11, 3),
		Reason:   "Inventaire",
	}

	tests := []struct {
		name   string
		mutate func(*ClosureRequest)
		fields []string
	}{
		{"valid", func(*ClosureRequest) {}, nil},
		{"single day", func(c *ClosureRequest) { c.End = c.Start }, nil},
		{"past dates accepted", func(c *ClosureRequest) {
			c.Start = date(2001, 1, 1)
			c.End = date(2001, 1, 2)
		}, nil},
		{"empty reason", func(c *ClosureRequest) { c.Reason = "   " }, []string{FieldReason}},
		{"empty resource", func(c *ClosureRequest) { c.Resource = "" }, []string{FieldResource}},
		{"inverted range", func(c *ClosureRequest) { c.End = date(2024, 10, 31) }, []string{FieldRange}},
		{"everything wrong", func(c *ClosureRequest) {
			c.Resource = ""
			c.Reason = ""
			c.Start = time.Time{}
		}, []string{FieldResource, FieldReason, FieldRange}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := req.Validate()
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("expected valid request, got %v", err)
				}
				return
			}

			if !errors.HasCode(err, errors.ErrValidation.Code) {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
			if got := InvalidFields(err); !reflect.DeepEqual(got, tt.fields) {
				t.Errorf("invalid fields = %v, want %v", got, tt.fields)
			}
		})
	}
}
