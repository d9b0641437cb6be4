package upstream

import "testing"

func TestDecodeListBareArray(t *testing.T) {
	body := []byte(`[{"id":"d1","name":"Dr. Osei"},{"id":"d2","name":"Dr. Lin"}]`)
	page, err := DecodeList[Doctor](body)
	if err != nil {
		t.Fatalf("decode bare array: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Pagination != nil {
		t.Fatal("bare array must not carry pagination")
	}
}

func TestDecodeListEnvelope(t *testing.T) {
	body := []byte(`{"data":[{"id":"d1"}],"pagination":{"page":2,"totalPages":5,"total":41}}`)
	page, err := DecodeList[Doctor](body)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "d1" {
		t.Fatalf("unexpected items %+v", page.Items)
	}
	if page.Pagination == nil || page.Pagination.TotalPages != 5 || page.Pagination.Total != 41 {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}
}

func TestDecodeListLeadingWhitespace(t *testing.T) {
	page, err := DecodeList[Doctor]([]byte("  \n\t[]"))
	if err != nil {
		t.Fatalf("decode whitespace-prefixed array: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(page.Items))
	}
}

func TestDecodeListRejectsGarbage(t *testing.T) {
	if _, err := DecodeList[Doctor](nil); err == nil {
		t.Fatal("empty body must error")
	}
	if _, err := DecodeList[Doctor]([]byte(`"nope"`)); err == nil {
		t.Fatal("scalar body must error")
	}
}
