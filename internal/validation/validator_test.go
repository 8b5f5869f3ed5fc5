// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package validation

import (
	"strings"
	"testing"

	"github.com/jaspercycles/journeycache/internal/content"
)

type photosRequest struct {
	ID   string `query:"id" validate:"required,resourceid"`
	Size int    `query:"size" validate:"min=1,max=5000"`
}

type activitiesRequest struct {
	StartDate string `query:"startDate" validate:"omitempty,startdate"`
}

type postRequest struct {
	Slug string `json:"slug" validate:"required,max=8"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{"valid photos", &photosRequest{ID: "14231234", Size: 2048}, "", ""},
		{"planned route id", &photosRequest{ID: "mock", Size: 1}, "", ""},
		{"missing id", &photosRequest{Size: 10}, "id", "required"},
		{"id with slash", &photosRequest{ID: "../etc", Size: 10}, "id", "resourceid"},
		{"size too big", &photosRequest{ID: "1", Size: 9000}, "size", "max"},
		{"empty start date", &activitiesRequest{}, "", ""},
		{"date only", &activitiesRequest{StartDate: "2025-05-24"}, "", ""},
		{"rfc3339", &activitiesRequest{StartDate: "2025-05-24T06:00:00+02:00"}, "", ""},
		{"bad date", &activitiesRequest{StartDate: "yesterday"}, "startDate", "startdate"},
		{"valid slug", &postRequest{Slug: "preview"}, "", ""},
		{"long slug", &postRequest{Slug: "dynamic-routing"}, "slug", "max"},
		{"query per page", &content.Query{PerPage: 500}, "per_page", "max"},
		{"query tag", &content.Query{Tag: strings.Repeat("x", 65)}, "tag", "max"},
		{"query ok", &content.Query{Page: 2, PerPage: 10, Tag: "ferry"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected a validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %v", verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("got %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	verr := ValidateStruct(&photosRequest{ID: "1", Size: 0})
	if verr == nil {
		t.Fatal("expected an error")
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != CodeValidation {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Message != "size must be at least 1" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "size" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	verr := ValidateStruct(&photosRequest{ID: "", Size: 0})
	if verr == nil {
		t.Fatal("expected an error")
	}
	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details = %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "id: id is required") || !strings.Contains(apiErr.Message, "size:") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{&activitiesRequest{StartDate: "nope"}, "startDate must be an RFC3339 timestamp or a YYYY-MM-DD date"},
		{&postRequest{}, "slug is required"},
		{&content.Query{Tag: strings.Repeat("t", 70)}, "tag must be at most 64 characters"},
	}
	for _, tt := range tests {
		verr := ValidateStruct(tt.input)
		if verr == nil || verr.Error() != tt.want {
			t.Errorf("got %v, want %q", verr, tt.want)
		}
	}
}

func TestIsStartDate(t *testing.T) {
	for s, want := range map[string]bool{
		"2025-05-24":           true,
		"2025-05-24T00:00:00Z": true,
		"2025-13-01":           false,
		"":                     false,
	} {
		if got := IsStartDate(s); got != want {
			t.Errorf("IsStartDate(%q) = %v, want %v", s, got, want)
		}
	}
}
