package crud_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/labhub-io/labhub-go/client"
	"github.com/labhub-io/labhub-go/crud"
)

// pagedDoer models a server holding a fixed ordered collection and answering
// offset/limit listing calls, including the zero-limit count probe.
type pagedDoer struct {
	ids       []string
	listCalls int
	failNext  error
}

func (f *pagedDoer) Get(_ context.Context, _ string, query url.Values) (*client.Response, error) {
	f.listCalls++
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}

	offset, err := strconv.Atoi(query.Get("offset"))
	if err != nil {
		return nil, fmt.Errorf("pagedDoer: bad offset: %w", err)
	}
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil {
		return nil, fmt.Errorf("pagedDoer: bad limit: %w", err)
	}

	var window []map[string]any
	for i := offset; i < offset+limit && i < len(f.ids); i++ {
		window = append(window, map[string]any{"id": f.ids[i]})
	}
	if window == nil {
		window = []map[string]any{}
	}

	body, err := json.Marshal(window)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set(crud.HeaderTotalCount, strconv.Itoa(len(f.ids)))
	return &client.Response{StatusCode: http.StatusOK, Header: h, Body: body}, nil
}

func (f *pagedDoer) Post(context.Context, string, any) (*client.Response, error) {
	return nil, errors.New("pagedDoer: unexpected post")
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("E%d", i+1)
	}
	return ids
}

func drain(t *testing.T, res *crud.Result[thing]) []string {
	t.Helper()
	var got []string
	for {
		item, ok, err := res.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			return got
		}
		got = append(got, item.ID)
	}
}

func TestResult_ScenarioFivePagesOfTwo(t *testing.T) {
	// limit=2 over E1..E5: pages [E1,E2],[E3,E4],[E5],[].
	server := &pagedDoer{ids: makeIDs(5)}
	res := newRepo(server).Results(0, 2, nil)
	ctx := context.Background()

	for i, want := range []string{"E1", "E2", "E3", "E4", "E5"} {
		item, ok, err := res.Next(ctx)
		if err != nil || !ok {
			t.Fatalf("call %d: expected value, got ok=%v err=%v", i+1, ok, err)
		}
		if item.ID != want {
			t.Fatalf("call %d: expected %s got %s", i+1, want, item.ID)
		}
	}
	// E5 came from the third fetch; detecting the end takes a fourth.
	if server.listCalls != 3 {
		t.Fatalf("expected 3 fetches before exhaustion check, got %d", server.listCalls)
	}
	if _, ok, err := res.Next(ctx); ok || err != nil {
		t.Fatalf("expected end of sequence, got ok=%v err=%v", ok, err)
	}
	if server.listCalls != 4 {
		t.Fatalf("expected the terminal empty fetch, got %d calls", server.listCalls)
	}
}

func TestResult_YieldsTotalInOrderWithExtraFetch(t *testing.T) {
	cases := []struct {
		total int
		limit int
	}{
		{0, 1},
		{1, 1},
		{1, 10},
		{5, 2},
		{6, 2},
		{7, 3},
		{50, 50},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("total=%d limit=%d", tc.total, tc.limit), func(t *testing.T) {
			server := &pagedDoer{ids: makeIDs(tc.total)}
			res := newRepo(server).Results(0, tc.limit, nil)

			got := drain(t, res)
			if len(got) != tc.total {
				t.Fatalf("expected %d entities, got %d", tc.total, len(got))
			}
			for i, id := range got {
				if want := fmt.Sprintf("E%d", i+1); id != want {
					t.Fatalf("position %d: expected %s got %s", i, want, id)
				}
			}
			wantCalls := tc.total/tc.limit + 1
			if tc.total%tc.limit != 0 {
				wantCalls++
			}
			if server.listCalls != wantCalls {
				t.Fatalf("expected %d list calls, got %d", wantCalls, server.listCalls)
			}
		})
	}
}

func TestResult_ExhaustionIsTerminal(t *testing.T) {
	server := &pagedDoer{ids: makeIDs(1)}
	res := newRepo(server).Results(0, 1, nil)

	drain(t, res)
	calls := server.listCalls
	for i := 0; i < 3; i++ {
		if _, ok, err := res.Next(context.Background()); ok || err != nil {
			t.Fatalf("expected terminal exhaustion, got ok=%v err=%v", ok, err)
		}
	}
	if server.listCalls != calls {
		t.Fatalf("exhausted result must not fetch again: %d -> %d calls", calls, server.listCalls)
	}
}

func TestResult_PartialPageDoesNotExhaust(t *testing.T) {
	// 3 entities with limit 2: second page is short but non-empty.
	server := &pagedDoer{ids: makeIDs(3)}
	res := newRepo(server).Results(0, 2, nil)
	got := drain(t, res)
	if len(got) != 3 {
		t.Fatalf("expected all 3 entities past the short page, got %d", len(got))
	}
}

func TestResult_LenIsMemoizedProbe(t *testing.T) {
	server := &pagedDoer{ids: makeIDs(7)}
	res := newRepo(server).Results(0, 3, nil)
	ctx := context.Background()

	total, err := res.Len(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 {
		t.Fatalf("expected total 7, got %d", total)
	}
	if server.listCalls != 1 {
		t.Fatalf("expected one probe call, got %d", server.listCalls)
	}

	if _, err := res.Len(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.listCalls != 1 {
		t.Fatalf("second Len must be served from memo, got %d calls", server.listCalls)
	}

	// The probe must not have moved the cursor: iteration starts at E1.
	item, ok, err := res.Next(ctx)
	if err != nil || !ok || item.ID != "E1" {
		t.Fatalf("cursor disturbed by probe: %+v ok=%v err=%v", item, ok, err)
	}
}

func TestResult_LenRefreshedByRealFetch(t *testing.T) {
	server := &pagedDoer{ids: makeIDs(4)}
	res := newRepo(server).Results(0, 2, nil)
	ctx := context.Background()

	if _, _, err := res.Next(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A real page fetch already reported the total; Len must not probe.
	calls := server.listCalls
	total, err := res.Len(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 4 || server.listCalls != calls {
		t.Fatalf("expected memoized total 4 without extra call, got total=%d calls=%d", total, server.listCalls)
	}
}

func TestResult_IsEmpty(t *testing.T) {
	ctx := context.Background()

	empty := newRepo(&pagedDoer{}).Results(0, 10, nil)
	got, err := empty.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected empty collection")
	}

	nonEmpty := newRepo(&pagedDoer{ids: makeIDs(2)}).Results(0, 10, nil)
	got, err = nonEmpty.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatalf("expected non-empty collection")
	}
}

func TestResult_FetchErrorDoesNotAdvance(t *testing.T) {
	server := &pagedDoer{ids: makeIDs(2)}
	server.failNext = errors.New("transient transport failure")
	res := newRepo(server).Results(0, 2, nil)
	ctx := context.Background()

	if _, _, err := res.Next(ctx); err == nil {
		t.Fatalf("expected the transport error to surface")
	}
	// The offset did not advance, so the retry sees the first page.
	got := drain(t, res)
	if len(got) != 2 || got[0] != "E1" {
		t.Fatalf("expected retry from the same offset, got %v", got)
	}
}

func TestResult_AllMatchesNext(t *testing.T) {
	server := &pagedDoer{ids: makeIDs(5)}
	res := newRepo(server).Results(0, 2, nil)

	var got []string
	for item, err := range res.All(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, item.ID)
	}
	want := []string{"E1", "E2", "E3", "E4", "E5"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestResult_AllStopsOnError(t *testing.T) {
	server := &pagedDoer{ids: makeIDs(2)}
	server.failNext = errors.New("boom")
	res := newRepo(server).Results(0, 2, nil)

	var seen int
	var lastErr error
	for _, err := range res.All(context.Background()) {
		seen++
		lastErr = err
	}
	if seen != 1 || lastErr == nil {
		t.Fatalf("expected a single error yield, got seen=%d err=%v", seen, lastErr)
	}
}

func TestResult_StartOffset(t *testing.T) {
	server := &pagedDoer{ids: makeIDs(5)}
	res := newRepo(server).Results(3, 2, nil)

	got := drain(t, res)
	want := []string{"E4", "E5"}
	if len(got) != len(want) || got[0] != "E4" || got[1] != "E5" {
		t.Fatalf("expected %v from offset 3, got %v", want, got)
	}
}
