package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/splitme/splitme/internal/models"
)

func TestToAPIGroup_WireShape(t *testing.T) {
	data, err := json.Marshal(toAPIGroup(&models.Group{ID: "g1", Name: "Trip", CreatedAt: 1700000000}))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"members":[]`, `"createdAt":"2023-11-14T22:13:20Z"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestToAPIExpense_EmptyParticipants(t *testing.T) {
	e := toAPIExpense(&models.Expense{ID: "e1"})
	if e.Participants == nil {
		t.Error("participants should encode as an empty list")
	}
	if e.CreatedAt != nil {
		t.Error("zero creation time should be omitted")
	}
}
