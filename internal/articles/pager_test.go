package articles

import "testing"

func seqIDs(n int) []uint64 {
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(i + 1)
	}
	return ids
}

func TestPagerPartitionsWithoutDupOrDrop(t *testing.T) {
	for _, tc := range []struct{ n, pageSize int }{
		{0, 20}, {1, 20}, {19, 20}, {20, 20}, {21, 20}, {45, 20}, {100, 7},
	} {
		pager := NewPager(seqIDs(tc.n), tc.pageSize)

		wantPages := (tc.n + tc.pageSize - 1) / tc.pageSize
		if got := pager.TotalPages(); got != wantPages {
			t.Fatalf("n=%d p=%d: TotalPages=%d want %d", tc.n, tc.pageSize, got, wantPages)
		}

		var concat []uint64
		for page := 1; page <= pager.TotalPages(); page++ {
			items := pager.Page(page)
			if page < pager.TotalPages() && len(items) != tc.pageSize {
				t.Fatalf("n=%d p=%d: page %d has %d items, want %d", tc.n, tc.pageSize, page, len(items), tc.pageSize)
			}
			concat = append(concat, items...)
		}

		if len(concat) != tc.n {
			t.Fatalf("n=%d p=%d: concatenated %d items", tc.n, tc.pageSize, len(concat))
		}
		// Concatenation must equal the reversed input: newest first.
		for i, id := range concat {
			if want := uint64(tc.n - i); id != want {
				t.Fatalf("n=%d p=%d: position %d has id %d, want %d", tc.n, tc.pageSize, i, id, want)
			}
		}
	}
}

func TestPagerNavigationClamps(t *testing.T) {
	pager := NewPager(seqIDs(45), 20)

	if !pager.HasNext() || pager.HasPrev() {
		t.Fatalf("page 1 of 3: next enabled, prev disabled; got next=%v prev=%v", pager.HasNext(), pager.HasPrev())
	}

	pager.Prev()
	if pager.CurrentPage() != 1 {
		t.Fatalf("prev at page 1 must stay at 1, got %d", pager.CurrentPage())
	}

	pager.Next()
	pager.Next()
	if pager.CurrentPage() != 3 {
		t.Fatalf("expected page 3, got %d", pager.CurrentPage())
	}
	if pager.HasNext() {
		t.Fatalf("next must be disabled on the last page")
	}

	pager.Next()
	if pager.CurrentPage() != 3 {
		t.Fatalf("next at last page must stay at 3, got %d", pager.CurrentPage())
	}

	pager.SetPage(99)
	if pager.CurrentPage() != 3 {
		t.Fatalf("SetPage beyond range must clamp to 3, got %d", pager.CurrentPage())
	}
	pager.SetPage(-5)
	if pager.CurrentPage() != 1 {
		t.Fatalf("SetPage below range must clamp to 1, got %d", pager.CurrentPage())
	}
}

func TestPagerFortyFiveArticlesPageSizeTwenty(t *testing.T) {
	pager := NewPager(seqIDs(45), 20)

	if pager.TotalPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", pager.TotalPages())
	}

	page1 := pager.Page(1)
	if page1[0] != 45 || page1[len(page1)-1] != 26 {
		t.Fatalf("page 1 should span 45..26, got %d..%d", page1[0], page1[len(page1)-1])
	}
	page3 := pager.Page(3)
	if len(page3) != 5 {
		t.Fatalf("page 3 should have 5 items, got %d", len(page3))
	}
	if page3[0] != 5 || page3[4] != 1 {
		t.Fatalf("page 3 should span 5..1, got %d..%d", page3[0], page3[4])
	}
}

func TestPagerEmptySnapshot(t *testing.T) {
	pager := NewPager(nil, 20)

	if !pager.Empty() {
		t.Fatalf("expected empty pager")
	}
	if pager.TotalPages() != 0 {
		t.Fatalf("empty snapshot must have 0 pages, got %d", pager.TotalPages())
	}
	if items := pager.Current(); len(items) != 0 {
		t.Fatalf("empty snapshot must yield no items, got %v", items)
	}
	if pager.HasNext() || pager.HasPrev() {
		t.Fatalf("no navigation on an empty snapshot")
	}
}
