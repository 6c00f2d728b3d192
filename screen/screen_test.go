// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ward-admin/models"
	"github.com/danielhkuo/ward-admin/store"
)

// countingStore records every call made to the wrapped store.
type countingStore struct {
	store.Store
	mu     sync.Mutex
	calls  map[string]int
	getErr error
}

func newCountingStore() *countingStore {
	return &countingStore{Store: store.NewMemory(), calls: map[string]int{}}
}

func (c *countingStore) count(op string) {
	c.mu.Lock()
	c.calls[op]++
	c.mu.Unlock()
}

func (c *countingStore) writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls["push"] + c.calls["update"] + c.calls["remove"]
}

func (c *countingStore) Get(ctx context.Context, collection string) (map[string]models.Fields, error) {
	c.count("get")
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.Store.Get(ctx, collection)
}

func (c *countingStore) Push(ctx context.Context, collection string, f models.Fields) (string, error) {
	c.count("push")
	return c.Store.Push(ctx, collection, f)
}

func (c *countingStore) Update(ctx context.Context, collection, id string, f models.Fields) error {
	c.count("update")
	return c.Store.Update(ctx, collection, id, f)
}

func (c *countingStore) Remove(ctx context.Context, collection, id string) error {
	c.count("remove")
	return c.Store.Remove(ctx, collection, id)
}

func mustSpec(t *testing.T, name string) Spec {
	t.Helper()
	spec, ok := Lookup(name)
	require.True(t, ok, "screen %q not registered", name)
	return spec
}

// seed pushes n mandis in order, returning their IDs oldest first.
func seed(t *testing.T, s store.Store, collection string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range n {
		id, err := s.Push(context.Background(), collection, models.Fields{
			"name":    fmt.Sprintf("Mandi %c", 'A'+i),
			"contact": fmt.Sprintf("98000000%02d", i),
			"region":  "North",
		})
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func recordIDs(recs []models.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func reversed(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

func TestFetchPage_TwelveRecords(t *testing.T) {
	mem := store.NewMemory()
	ids := seed(t, mem, models.CollectionMandis, 12)
	newestFirst := reversed(ids)

	scr := New(mustSpec(t, "mandis"), mem)
	ctx := context.Background()

	page1, err := scr.FetchPage(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, newestFirst[:10], recordIDs(page1))

	p := scr.Pagination()
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 12, p.TotalItems)
	assert.Equal(t, 1, p.CurrentPage)

	page2, err := scr.FetchPage(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, newestFirst[10:], recordIDs(page2))
}

func TestFetchPage_PageArithmetic(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{0, 1, 4, 5, 6, 10, 11, 23} {
		for _, size := range []int{SmallPageSize, DefaultPageSize} {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				mem := store.NewMemory()
				seed(t, mem, models.CollectionMandis, n)
				scr := New(mustSpec(t, "mandis"), mem)

				_, err := scr.FetchPage(ctx, 1, size)
				require.NoError(t, err)
				pages := scr.Pagination().TotalPages
				assert.Equal(t, (n+size-1)/size, pages)
				if pages == 0 {
					return
				}

				last, err := scr.FetchPage(ctx, pages, size)
				require.NoError(t, err)
				want := n - size*(pages-1)
				assert.Len(t, last, want)
			})
		}
	}
}

func TestFetchPage_OutOfRange(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, models.CollectionMandis, 3)
	scr := New(mustSpec(t, "mandis"), mem)

	page, err := scr.FetchPage(context.Background(), 9, 10)
	require.NoError(t, err)
	assert.Len(t, page, 3, "a page past the end falls back to the last page")
	assert.Equal(t, 1, scr.Pagination().CurrentPage)
	assert.Equal(t, page, scr.Page())

	empty := New(mustSpec(t, "wards"), mem)
	page, err = empty.FetchPage(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Equal(t, 1, empty.Pagination().CurrentPage)
	assert.Equal(t, 0, empty.Pagination().TotalPages)
}

func TestSubmit_DeleteLastRecordOnPage(t *testing.T) {
	mem := store.NewMemory()
	ids := seed(t, mem, models.CollectionMandis, 11)
	scr := New(mustSpec(t, "mandis"), mem)
	ctx := context.Background()

	page, err := scr.FetchPage(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID, "oldest record sits alone on page 2")

	require.NoError(t, scr.Open(ModeDelete, models.Record{ID: page[0].ID}))
	_, err = scr.Submit(ctx)
	require.NoError(t, err)

	assert.Len(t, scr.Page(), 10, "view steps back to page 1")
	p := scr.Pagination()
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 10, p.TotalItems)

	again, err := scr.FetchPage(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, again, 10)
	assert.Equal(t, 1, scr.Pagination().CurrentPage)
}

func TestFetchPage_Idempotent(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, models.CollectionMandis, 7)
	scr := New(mustSpec(t, "mandis"), mem)

	first, err := scr.FetchPage(context.Background(), 2, 5)
	require.NoError(t, err)
	second, err := scr.FetchPage(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchPage_StoreFailureKeepsState(t *testing.T) {
	cs := newCountingStore()
	seed(t, cs.Store, models.CollectionMandis, 3)
	scr := New(mustSpec(t, "mandis"), cs)

	_, err := scr.FetchPage(context.Background(), 1, 10)
	require.NoError(t, err)

	cs.getErr = errors.New("connection refused")
	_, err = scr.FetchPage(context.Background(), 1, 10)

	var opErr *StoreOperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "fetch", opErr.Op)
	assert.Len(t, scr.Page(), 3)
	assert.NotEmpty(t, scr.TakeNotice())
	assert.Empty(t, scr.TakeNotice())
}

func TestFetchPage_ArchiveFilters(t *testing.T) {
	mem := store.NewMemory()
	mem.Load(models.CollectionMembers, map[string]models.Fields{
		"m1": {"name": "Asha", models.FieldArchived: false},
		"m2": {"name": "Ravi", models.FieldArchived: true},
		"m3": {"name": "Meena"},
	})
	ctx := context.Background()

	active, err := New(mustSpec(t, "members"), mem).FetchPage(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m1"}, recordIDs(active))

	archived, err := New(mustSpec(t, "member-archive"), mem).FetchPage(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, recordIDs(archived))
}

func TestSearch(t *testing.T) {
	mem := store.NewMemory()
	mem.Load(models.CollectionComplaints, map[string]models.Fields{
		"c1": {"complaint": "Pothole on road", "description": "Deep hole"},
		"c2": {"complaint": "Streetlight", "description": "Broken POTHOLE cover light"},
		"c3": {"complaint": "Garbage", "description": "Not collected"},
	})
	scr := New(mustSpec(t, "complaints"), mem)
	ctx := context.Background()

	_, err := scr.FetchPage(ctx, 1, 10)
	require.NoError(t, err)

	t.Run("case insensitive over search fields", func(t *testing.T) {
		got := scr.Search("pothole")
		assert.ElementsMatch(t, []string{"c1", "c2"}, recordIDs(got))
		for _, r := range got {
			hit := strings.Contains(strings.ToLower(r.Fields.String("complaint")), "pothole") ||
				strings.Contains(strings.ToLower(r.Fields.String("description")), "pothole")
			assert.True(t, hit)
		}
	})

	t.Run("resets to page one", func(t *testing.T) {
		_, err := scr.FetchPage(ctx, 2, 1)
		require.NoError(t, err)
		scr.Search("garbage")
		assert.Equal(t, 1, scr.State().Pagination.CurrentPage)
	})

	t.Run("query persists across fetches", func(t *testing.T) {
		scr.Search("garbage")
		page, err := scr.FetchPage(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"c3"}, recordIDs(page))
		assert.Equal(t, "garbage", scr.State().Query)
	})

	t.Run("empty query restores everything", func(t *testing.T) {
		got := scr.Search("")
		assert.Len(t, got, 3)
	})

	t.Run("no match", func(t *testing.T) {
		got := scr.Search("zzz")
		assert.NotNil(t, got)
		assert.Empty(t, got)
		scr.Search("")
	})
}

func TestSubmit_DuplicateComplaintMakesNoStoreCall(t *testing.T) {
	cs := newCountingStore()
	_, err := cs.Store.Push(context.Background(), models.CollectionComplaints, models.Fields{"complaint": "pothole"})
	require.NoError(t, err)

	scr := New(mustSpec(t, "complaints"), cs)
	_, err = scr.FetchPage(context.Background(), 1, 10)
	require.NoError(t, err)
	before := len(cs.calls)
	gets := cs.calls["get"]

	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: models.Fields{"complaint": "Pothole"}}))
	_, err = scr.Submit(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Complaint must be unique", vErr.Fields["complaint"])
	assert.Equal(t, 0, cs.writes())
	assert.Equal(t, gets, cs.calls["get"])
	assert.Equal(t, before, len(cs.calls))

	st := scr.State()
	assert.Equal(t, ModeAdd, st.Mode, "form stays open after a rejected submit")
	assert.Contains(t, st.Errors, "complaint")
}

func TestSubmit_AddUpdateDelete(t *testing.T) {
	mem := store.NewMemory()
	scr := New(mustSpec(t, "wards"), mem)
	ctx := context.Background()

	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: models.Fields{"wardName": "North", "wardNumber": "1"}}))
	id, err := scr.Submit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, ModeClosed, scr.State().Mode)
	assert.Len(t, scr.Page(), 1, "submit re-fetches the page")

	require.NoError(t, scr.Open(ModeUpdate, models.Record{ID: id, Fields: models.Fields{"wardNumber": "2"}}))
	_, err = scr.Submit(ctx)
	require.NoError(t, err)

	got, err := mem.Get(ctx, models.CollectionWards)
	require.NoError(t, err)
	assert.Equal(t, "North", got[id]["wardName"], "update is partial")
	assert.Equal(t, "2", got[id]["wardNumber"])

	require.NoError(t, scr.Open(ModeDelete, models.Record{ID: id}))
	_, err = scr.Submit(ctx)
	require.NoError(t, err)
	assert.Empty(t, scr.Page())
}

func TestSubmit_AddIgnoresClientID(t *testing.T) {
	mem := store.NewMemory()
	scr := New(mustSpec(t, "wards"), mem)
	ctx := context.Background()

	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: models.Fields{"id": "chosen", "wardName": "North", "wardNumber": float64(1234567)}}))
	id, err := scr.Submit(ctx)
	require.NoError(t, err, "large numeric ward numbers are digits")
	assert.NotEqual(t, "chosen", id)

	got, err := mem.Get(ctx, models.CollectionWards)
	require.NoError(t, err)
	require.Contains(t, got, id)
	assert.NotContains(t, got[id], "id")

	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: models.Fields{"wardName": "South", "wardNumber": "1234567"}}))
	_, err = scr.Submit(ctx)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "wardNumber", "numeric and text ward numbers compare equal")
}

func TestSubmit_WardUniquenessOnUpdateIgnoresSelf(t *testing.T) {
	mem := store.NewMemory()
	mem.Load(models.CollectionWards, map[string]models.Fields{
		"w1": {"wardName": "North", "wardNumber": "1"},
		"w2": {"wardName": "South", "wardNumber": "2"},
	})
	scr := New(mustSpec(t, "wards"), mem)
	ctx := context.Background()

	require.NoError(t, scr.Open(ModeUpdate, models.Record{ID: "w1", Fields: models.Fields{"wardName": "north", "wardNumber": "1"}}))
	_, err := scr.Submit(ctx)
	require.NoError(t, err)

	require.NoError(t, scr.Open(ModeUpdate, models.Record{ID: "w1", Fields: models.Fields{"wardNumber": "2"}}))
	_, err = scr.Submit(ctx)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "wardNumber")
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		screen string
		form   models.Fields
		field  string
	}{
		{"missing required", "members", models.Fields{"name": "Asha"}, "userId"},
		{"contact letters", "members", models.Fields{"name": "Asha", "userId": "a", "password": "p", "contact": "98x", "wardNo": "1"}, "contact"},
		{"contact too long", "mandis", models.Fields{"name": "Central", "contact": "12345678901"}, "contact"},
		{"contact with space", "mandis", models.Fields{"name": "Central", "contact": "123 456"}, "contact"},
		{"mandi name digits", "mandis", models.Fields{"name": "Mandi 7", "contact": "123"}, "name"},
		{"mandi name too long", "mandis", models.Fields{"name": "Abcdefghijklmnopqrstu", "contact": "123"}, "name"},
		{"ward leading space", "wards", models.Fields{"wardName": " North", "wardNumber": "1"}, "wardName"},
		{"ward number letters", "wards", models.Fields{"wardName": "North", "wardNumber": "1a"}, "wardNumber"},
		{"complaint symbols", "complaints", models.Fields{"complaint": "Leak!"}, "complaint"},
		{"description too long", "complaints", models.Fields{"complaint": "Leak", "description": strings.Repeat("word ", 161)}, "description"},
		{"bad email", "centers", centerForm("email", "not-an-email"), "email"},
		{"center without address", "centers", models.Fields{"centerType": "Plant 1", "sapPlantCode": "P100", "centerName": "Depot", "contactNumber": "9800000000", "email": "depot@example.com"}, "address"},
		{"center without email", "centers", centerForm("email", ""), "email"},
		{"center without contact", "centers", centerForm("contactNumber", " "), "contactNumber"},
		{"center without plant code", "centers", centerForm("sapPlantCode", ""), "sapPlantCode"},
		{"center type outside choices", "centers", centerForm("centerType", "Plant 3"), "centerType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := newCountingStore()
			scr := New(mustSpec(t, tt.screen), cs)
			require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: tt.form}))

			_, err := scr.Submit(context.Background())
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
			assert.Equal(t, 0, cs.writes())
		})
	}
}

// centerForm is a complete center with one field overridden.
func centerForm(field string, value any) models.Fields {
	f := models.Fields{
		"centerType":    "Plant 1",
		"sapPlantCode":  "P100",
		"centerName":    "Depot",
		"contactNumber": "9800000000",
		"email":         "depot@example.com",
		"address":       "12 Market Road",
	}
	f[field] = value
	return f
}

func TestSubmit_CenterComplete(t *testing.T) {
	mem := store.NewMemory()
	scr := New(mustSpec(t, "centers"), mem)
	ctx := context.Background()

	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: centerForm("centerType", "Plant 2")}))
	id, err := scr.Submit(ctx)
	require.NoError(t, err)

	got, err := mem.Get(ctx, models.CollectionCenters)
	require.NoError(t, err)
	assert.Equal(t, false, got[id]["inProductionAllowed"])
	assert.Equal(t, false, got[id]["isConfirmationAllowed"])

	// plant codes may repeat
	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: centerForm("centerName", "Annex")}))
	_, err = scr.Submit(ctx)
	require.NoError(t, err)
}

func TestSubmit_ComplaintUniquenessOnAddOnly(t *testing.T) {
	mem := store.NewMemory()
	mem.Load(models.CollectionComplaints, map[string]models.Fields{
		"c1": {"complaint": "Pothole"},
		"c2": {"complaint": "Streetlight"},
	})
	scr := New(mustSpec(t, "complaints"), mem)
	ctx := context.Background()

	require.NoError(t, scr.Open(ModeUpdate, models.Record{ID: "c2", Fields: models.Fields{"complaint": "pothole"}}))
	_, err := scr.Submit(ctx)
	require.NoError(t, err, "updates are not checked for duplicates")

	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: models.Fields{"complaint": "POTHOLE"}}))
	_, err = scr.Submit(ctx)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "complaint")
}

func TestSubmit_MemberDuplicates(t *testing.T) {
	mem := store.NewMemory()
	mem.Load(models.CollectionMembers, map[string]models.Fields{
		"m1": {"name": "Asha", "userId": "Asha01", "contact": "9876543210", "wardNo": "3"},
	})
	base := models.Fields{"name": "Ravi", "userId": "ravi", "password": "x", "contact": "9000000000", "wardNo": "4"}

	tests := []struct {
		field, value, msg string
	}{
		{"contact", "9876543210", "This contact number already exists."},
		{"userId", "asha01", "This user id already exists."},
		{"wardNo", "3", "Only one member can exist per ward"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			form := base.Clone()
			form[tt.field] = tt.value
			scr := New(mustSpec(t, "members"), mem)
			require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: form}))

			_, err := scr.Submit(context.Background())
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.msg, vErr.Fields[tt.field])
		})
	}

	t.Run("add sets archive default", func(t *testing.T) {
		scr := New(mustSpec(t, "members"), mem)
		require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: base}))
		id, err := scr.Submit(context.Background())
		require.NoError(t, err)

		got, err := mem.Get(context.Background(), models.CollectionMembers)
		require.NoError(t, err)
		assert.Equal(t, false, got[id][models.FieldArchived])
	})
}

func TestSubmit_Guards(t *testing.T) {
	scr := New(mustSpec(t, "mandis"), store.NewMemory())

	_, err := scr.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotEditing)

	assert.ErrorIs(t, scr.Open(ModeUpdate, models.Record{}), ErrMissingID)
	assert.ErrorIs(t, scr.Open(ModeDelete, models.Record{}), ErrMissingID)

	archive := New(mustSpec(t, "member-archive"), store.NewMemory())
	assert.ErrorIs(t, archive.Open(ModeAdd, models.Record{}), ErrReadOnly)
}

func TestSubmit_StoreFailureKeepsForm(t *testing.T) {
	scr := New(mustSpec(t, "mandis"), store.NewMemory())
	require.NoError(t, scr.Open(ModeDelete, models.Record{ID: "missing"}))

	_, err := scr.Submit(context.Background())
	var opErr *StoreOperationError
	require.ErrorAs(t, err, &opErr)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, ModeDelete, scr.State().Mode)
}

func TestOpen_ReplacesForm(t *testing.T) {
	scr := New(mustSpec(t, "mandis"), store.NewMemory())
	require.NoError(t, scr.Open(ModeAdd, models.Record{Fields: models.Fields{"name": "A"}}))
	require.NoError(t, scr.Open(ModeUpdate, models.Record{ID: "x", Fields: models.Fields{"name": "B"}}))

	st := scr.State()
	assert.Equal(t, ModeUpdate, st.Mode)
	assert.Equal(t, "x", st.EditID)
	assert.Equal(t, "B", st.Form["name"])

	scr.Cancel()
	assert.Equal(t, ModeClosed, scr.State().Mode)
}

func TestArchiveRestore(t *testing.T) {
	mem := store.NewMemory()
	mem.Load(models.CollectionMembers, map[string]models.Fields{
		"m1": {"name": "Asha", models.FieldArchived: false},
	})
	ctx := context.Background()

	members := New(mustSpec(t, "members"), mem)
	require.NoError(t, members.Archive(ctx, models.Record{ID: "m1"}))
	assert.Empty(t, members.Page())

	got, err := mem.Get(ctx, models.CollectionMembers)
	require.NoError(t, err)
	assert.Contains(t, got, "m1", "archive is not a delete")

	archive := New(mustSpec(t, "member-archive"), mem)
	page, err := archive.FetchPage(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)

	require.NoError(t, archive.Restore(ctx, page[0]))
	assert.Empty(t, archive.Page())

	assert.ErrorIs(t, members.Archive(ctx, models.Record{}), ErrMissingID)
	assert.ErrorIs(t, New(mustSpec(t, "wards"), mem).Archive(ctx, models.Record{ID: "w"}), ErrArchiveUnsupported)
}

func TestApplySnapshot(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, models.CollectionMandis, 2)
	scr := New(mustSpec(t, "mandis"), mem)
	_, err := scr.FetchPage(context.Background(), 1, 10)
	require.NoError(t, err)
	scr.Search("mandi a")

	page := scr.ApplySnapshot(map[string]models.Fields{
		"z1": {"name": "Mandi A"},
		"z2": {"name": "Mandi Alpha"},
		"z3": {"name": "Other"},
	})
	assert.Equal(t, []string{"z2", "z1"}, recordIDs(page))
	assert.Equal(t, 2, scr.Pagination().TotalItems)
}

func TestSpecs(t *testing.T) {
	names := map[string]bool{}
	for _, s := range Specs() {
		assert.False(t, names[s.Name], "duplicate screen %q", s.Name)
		names[s.Name] = true
		assert.NotEmpty(t, s.Collection)
		assert.NotEmpty(t, s.SearchFields)
	}
	for _, want := range []string{"members", "member-archive", "wards", "complaints", "centers", "mandis"} {
		assert.True(t, names[want], want)
	}

	_, ok := Lookup("reports")
	assert.False(t, ok)
}
