package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type line struct {
	Name     string          `json:"item_name" validate:"required,min=1,max=100"`
	Quantity int32           `json:"quantity" validate:"gte=1,lte=100"`
	Price    decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

type cart struct {
	Customer string `json:"customerName" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Items    []line `json:"items" validate:"required,min=1,max=50,dive"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(cart{
		Customer: "Alex",
		Items:    []line{{Name: "Latte", Quantity: 2, Price: decimal.RequireFromString("5.00")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_FieldPaths(t *testing.T) {
	err := Struct(cart{
		Email: "not-an-email",
		Items: []line{
			{Name: "Latte", Quantity: 1, Price: decimal.Zero},
			{Name: "", Quantity: 101, Price: decimal.RequireFromString("-1")},
		},
	})

	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}

	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Path] = f.Message
	}

	want := map[string]string{
		"customerName":       "is required",
		"email":              "must be a valid email address",
		"items.1.item_name":  "is required",
		"items.1.quantity":   "must be less than or equal to 100",
		"items.1.unit_price": "must be greater than or equal to 0",
	}
	for path, msg := range want {
		if got[path] != msg {
			t.Errorf("%s: got %q, want %q", path, got[path], msg)
		}
	}
}

func TestStruct_EmptyItems(t *testing.T) {
	err := Struct(cart{Customer: "Alex", Items: []line{}})

	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ve.Fields[0].Path != "items" || ve.Fields[0].Message != "must have at least 1 entries" {
		t.Errorf("got %+v", ve.Fields[0])
	}
}

func TestName(t *testing.T) {
	tests := map[string]string{
		"Alex":                   "Alex",
		"  Mary   Jane  ":        "Mary Jane",
		"O'Brien-Smith Jr.":      "O'Brien-Smith Jr.",
		"<script>x</script>Bob":  "scriptxscriptBob",
		"Zoë":                    "Zo",
		"!!!":                    "",
	}
	for in, want := range tests {
		if got := Name(in); got != want {
			t.Errorf("Name(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestMenuItemName(t *testing.T) {
	if got := MenuItemName("Mocha (Large) & Cookie!", UnknownItemName); got != "Mocha (Large) & Cookie!" {
		t.Errorf("got %q", got)
	}
	if got := MenuItemName("<b></b>", UnknownItemName); got != UnknownItemName {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestText(t *testing.T) {
	tests := map[string]string{
		"extra hot please":                     "extra hot please",
		"<img src=x onerror=alert(1)>no foam":  "no foam",
		"javascript:alert(1)":                  "alert(1)",
		"<script>alert('x')</script>thanks":    "thanks",
		"   ":                                  "",
	}
	for in, want := range tests {
		if got := Text(in); got != want {
			t.Errorf("Text(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestInstructions(t *testing.T) {
	if got := Instructions("<i>light</i> ice"); got != "light ice" {
		t.Errorf("got %q", got)
	}
}

func TestEmail(t *testing.T) {
	if got := Email("  Alex@Example.COM "); got != "alex@example.com" {
		t.Errorf("got %q", got)
	}
	if got := Email("nope"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestPrice(t *testing.T) {
	if got := Price(decimal.RequireFromString("-3")); !got.IsZero() {
		t.Errorf("negative: got %s", got)
	}
	if got := Price(decimal.RequireFromString("1.005")); !got.Equal(decimal.RequireFromString("1.01")) {
		t.Errorf("rounding: got %s", got)
	}
}

type priced struct {
	UnitPrice decimal.Decimal `json:"unit_price" validate:"amount,gte=0,lte=99999.99"`
}

func TestStruct_AmountBounds(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"5.00", ""},
		{"99999.99", ""},
		{"100000000", "must be less than or equal to 99999.99"},
		{"1e12", "must be less than or equal to 99999.99"},
		{"1e7000000", "must be a decimal amount"},
		{"1e-7000000", "must be a decimal amount"},
	}

	for _, tt := range tests {
		err := Struct(priced{UnitPrice: decimal.RequireFromString(tt.price)})
		if tt.want == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.price, err)
			}
			continue
		}
		var ve *Error
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected *Error, got %v", tt.price, err)
			continue
		}
		if ve.Fields[0].Path != "unit_price" || ve.Fields[0].Message != tt.want {
			t.Errorf("%s: got %+v", tt.price, ve.Fields[0])
		}
	}
}

func TestAmount(t *testing.T) {
	tests := map[string]bool{
		"0":                                 true,
		"5.25":                              true,
		"0.000000000001":                    true,
		"1e12":                              true,
		"1e13":                              false,
		"1e-13":                             false,
		"1e7000000":                         false,
		"123456789012345678901234567890.12": false,
	}
	for in, want := range tests {
		if got := Amount(decimal.RequireFromString(in)); got != want {
			t.Errorf("Amount(%s) = %v, want %v", in, got, want)
		}
	}
}

func TestPrice_HugeExponentIsZeroed(t *testing.T) {
	if got := Price(decimal.RequireFromString("1e7000000")); !got.IsZero() {
		t.Errorf("expected zero, got exponent %d", got.Exponent())
	}
	if got := Price(decimal.RequireFromString("4.567")); got.String() != "4.57" {
		t.Errorf("got %s", got)
	}
}
