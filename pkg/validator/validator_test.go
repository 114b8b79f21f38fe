package validator

import (
	"testing"
)

type testPayload struct {
	ReaderName string `json:"readerName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Copies     int    `json:"copies" validate:"gte=1"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		ReaderName: "Ada Lovelace",
		Email:      "ada@example.com",
		Copies:     2,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		ReaderName: "",
		Email:      "invalid",
		Copies:     0,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundEmail := false
	for _, v := range vErrs {
		if v.Field == "email" {
			foundEmail = true
		}
	}

	if !foundEmail {
		t.Fatal("expected email field to use its json name")
	}
}

func TestValidationErrorsString(t *testing.T) {
	errs := ValidationErrors{
		{Field: "copies", Tag: "gte", Param: "1"},
		{Field: "email", Tag: "required"},
	}

	msg := errs.Error()
	if msg != "copies failed on gte=1; email failed on required" {
		t.Fatalf("unexpected message: %s", msg)
	}
}
