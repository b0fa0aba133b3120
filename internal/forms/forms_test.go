package forms

import (
	"testing"

	"event-ledger-service/internal/models"
)

func sampleForm() *Form {
	return NewForm([]Field{
		{ID: 3, Label: "Products", Kind: MultiChoice, Options: []string{"food", "crafts", "clothes"}, Order: 3,
			When: &Condition{FieldID: 2, Expected: "yes"}},
		{ID: 1, Label: "Business name", Kind: Text, Required: true, Order: 1},
		{ID: 2, Label: "Need a stall?", Kind: SingleChoice, Options: []string{"yes", "no"}, Required: true, Order: 2},
		{ID: 4, Label: "Food licence", Kind: Text, Required: true, Order: 4,
			When: &Condition{FieldID: 3, Expected: "food"}},
		{ID: 5, Label: "Notes", Kind: Textarea, Order: 5},
	})
}

func TestNewFormOrdersFields(t *testing.T) {
	form := sampleForm()
	for i, f := range form.Fields() {
		if f.ID != int64(i+1) {
			t.Fatalf("position %d: expected field %d, got %d", i, i+1, f.ID)
		}
	}
}

func TestVisible(t *testing.T) {
	form := sampleForm()

	tests := []struct {
		name      string
		id        int64
		responses Responses
		want      bool
	}{
		{name: "unconditional", id: 1, responses: Responses{}, want: true},
		{name: "condition unanswered", id: 3, responses: Responses{}, want: false},
		{name: "condition matches", id: 3, responses: Responses{2: "yes"}, want: true},
		{name: "condition differs", id: 3, responses: Responses{2: "no"}, want: false},
		{name: "multi choice contains", id: 4, responses: Responses{2: "yes", 3: []string{"crafts", "food"}}, want: true},
		{name: "multi choice decoded from json", id: 4, responses: Responses{2: "yes", 3: []any{"food"}}, want: true},
		{name: "parent hidden hides child", id: 4, responses: Responses{2: "no", 3: []string{"food"}}, want: false},
		{name: "unknown field", id: 99, responses: Responses{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := form.Visible(tt.id, tt.responses); got != tt.want {
				t.Fatalf("Visible(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestVisibleConditionCycle(t *testing.T) {
	form := NewForm([]Field{
		{ID: 1, Kind: Text, When: &Condition{FieldID: 2, Expected: "a"}},
		{ID: 2, Kind: Text, When: &Condition{FieldID: 1, Expected: "b"}},
	})
	if form.Visible(1, Responses{1: "b", 2: "a"}) {
		t.Fatal("expected cyclic condition to hide the field")
	}
}

func TestValidateAcceptsCompleteSubmission(t *testing.T) {
	form := sampleForm()

	cleaned, errs := form.Validate(Responses{
		1: "  Green Grocers ",
		2: "yes",
		3: []any{"food"},
		4: "LIC-42",
		9: "ignored",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if cleaned[1] != "Green Grocers" {
		t.Fatalf("expected trimmed name, got %q", cleaned[1])
	}
	products, ok := cleaned[3].([]string)
	if !ok || len(products) != 1 || products[0] != "food" {
		t.Fatalf("expected normalised products, got %#v", cleaned[3])
	}
	if _, ok := cleaned[9]; ok {
		t.Fatal("expected unknown field to be dropped")
	}
	if _, ok := cleaned[5]; ok {
		t.Fatal("expected empty optional field to be omitted")
	}
}

func TestValidateDropsHiddenAnswers(t *testing.T) {
	form := sampleForm()

	cleaned, errs := form.Validate(Responses{1: "Stall", 2: "no", 3: []string{"food"}})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := cleaned[3]; ok {
		t.Fatal("expected hidden answer to be dropped")
	}
}

func TestValidateErrors(t *testing.T) {
	form := sampleForm()

	tests := []struct {
		name      string
		responses Responses
		wantField int64
	}{
		{name: "missing required", responses: Responses{2: "no"}, wantField: 1},
		{name: "bad single choice", responses: Responses{1: "x", 2: "maybe"}, wantField: 2},
		{name: "bad multi choice", responses: Responses{1: "x", 2: "yes", 3: []string{"cars"}}, wantField: 3},
		{name: "required conditional", responses: Responses{1: "x", 2: "yes", 3: []string{"food"}}, wantField: 4},
		{name: "wrong type", responses: Responses{1: 12, 2: "no"}, wantField: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := form.Validate(tt.responses)
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %v", errs)
			}
			if errs[0].FieldID != tt.wantField {
				t.Fatalf("expected error on field %d, got %d (%s)", tt.wantField, errs[0].FieldID, errs[0].Message)
			}
		})
	}
}

func TestFromModel(t *testing.T) {
	parent := int64(7)
	expected := "yes"
	f, err := FromModel(&models.StallEnquiryField{
		ID:                 8,
		Label:              "Products",
		FieldType:          models.FieldTypeMultiChoice,
		Options:            models.StringSlice{"a", "b"},
		IsRequired:         true,
		VisibleWhenFieldID: &parent,
		VisibleWhenValue:   &expected,
	})
	if err != nil {
		t.Fatalf("FromModel: %v", err)
	}
	if f.Kind != MultiChoice || !f.Required || f.When == nil || f.When.FieldID != 7 || f.When.Expected != "yes" {
		t.Fatalf("unexpected field %+v", f)
	}

	if _, err := FromModel(&models.StallEnquiryField{FieldType: "date"}); err == nil {
		t.Fatal("expected unknown field type error")
	}
}
