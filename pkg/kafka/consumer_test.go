package kafka

import "testing"

func TestDecodeJSON(t *testing.T) {
	type doc struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	got, err := DecodeJSON[doc]([]byte(`{"title":"Cats","content":"Cats are animals"}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got.Title != "Cats" || got.Content != "Cats are animals" {
		t.Errorf("DecodeJSON = %+v", got)
	}
	if _, err := DecodeJSON[doc]([]byte(`{"title":`)); err == nil {
		t.Error("expected error for truncated message")
	}
}
