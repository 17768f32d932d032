package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAttendance(t *testing.T, s *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	rows := map[string]map[string]interface{}{
		"a1": {"courseId": "CS", "semesterNumber": 1, "name": "Databases"},
		"a2": {"courseId": "CS", "semesterNumber": 2, "name": "Networks"},
		"a3": {"courseId": "BA", "semesterNumber": 1, "name": "Accounting"},
		"a4": {"courseId": "CS", "semesterNumber": 3, "name": "Compilers", "meta": map[string]interface{}{"room": "B2"}},
	}
	for id, data := range rows {
		require.NoError(t, s.SetDocument(ctx, "attendance", id, data, false))
	}
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestMemoryStore_QueryEquality(t *testing.T) {
	s := NewMemoryStore()
	seedAttendance(t, s)

	docs, err := s.QueryDocuments(context.Background(), "attendance",
		Where("courseId", OpEqual, "CS"),
		Where("semesterNumber", OpEqual, 1),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ids(docs))
}

func TestMemoryStore_QueryOrdering(t *testing.T) {
	s := NewMemoryStore()
	seedAttendance(t, s)
	ctx := context.Background()

	docs, err := s.QueryDocuments(ctx, "attendance", Where("semesterNumber", OpGreaterOrEqual, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a4"}, ids(docs))

	docs, err = s.QueryDocuments(ctx, "attendance", Where("courseId", OpNotEqual, "CS"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a3"}, ids(docs))

	docs, err = s.QueryDocuments(ctx, "attendance", Where("meta.room", OpEqual, "B2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a4"}, ids(docs))
}

func TestMemoryStore_QueryRejectsBadFilter(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.QueryDocuments(context.Background(), "attendance", Where("x", Op("~"), 1))
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = s.QueryDocuments(context.Background(), "attendance", Where("", OpEqual, 1))
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetDocument(context.Background(), "students", "nobody")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryStore_SetMergeKeepsOtherFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "students", "7", map[string]interface{}{"name": "Ana", "gender": "F"}, false))
	require.NoError(t, s.SetDocument(ctx, "students", "7", map[string]interface{}{"name": "Ana Lim"}, true))

	doc, err := s.GetDocument(ctx, "students", "7")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lim", doc.Data["name"])
	assert.Equal(t, "F", doc.Data["gender"])

	require.NoError(t, s.SetDocument(ctx, "students", "7", map[string]interface{}{"name": "Replaced"}, false))
	doc, err = s.GetDocument(ctx, "students", "7")
	require.NoError(t, err)
	assert.NotContains(t, doc.Data, "gender")
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.SetDocument(ctx, "news", "n1", map[string]interface{}{"url": "a"}, false))

	doc, err := s.GetDocument(ctx, "news", "n1")
	require.NoError(t, err)
	doc.Data["url"] = "mutated"

	again, err := s.GetDocument(ctx, "news", "n1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Data["url"])
}

func TestMemoryStore_ListPaging(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.SetDocument(ctx, "perks", id, map[string]interface{}{"url": id}, false))
	}

	docs, total, err := s.ListDocuments(ctx, "perks", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"a"}, ids(docs))

	docs, _, err = s.ListDocuments(ctx, "perks", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStore_FailureAndDelay(t *testing.T) {
	s := NewMemoryStore()
	boom := errors.New("unavailable")
	s.FailWith = boom
	_, err := s.QueryDocuments(context.Background(), "exams")
	assert.ErrorIs(t, err, boom)

	s.FailWith = nil
	s.Delay = time.Second
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = s.GetDocument(ctx, "exams", "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDocument_DecodeAndEncode(t *testing.T) {
	type exam struct {
		Name     string `json:"name"`
		Semester int    `json:"semester"`
	}
	data, err := Encode(exam{Name: "Algebra", Semester: 2})
	require.NoError(t, err)

	var out exam
	require.NoError(t, Document{Data: data}.Decode(&out))
	assert.Equal(t, exam{Name: "Algebra", Semester: 2}, out)
}

func TestFilterCondition(t *testing.T) {
	sql, args, err := mustCond(t, Where("courseId", OpEqual, "CS")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "data @> ?::jsonb", sql)
	assert.Equal(t, []interface{}{`{"courseId":"CS"}`}, args)

	sql, args, err = mustCond(t, Where("profile.year", OpGreater, 2)).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(data #>> ?::text[])::numeric > ?", sql)
	assert.Equal(t, []interface{}{"{profile,year}", 2}, args)

	sql, _, err = mustCond(t, Where("name", OpLess, "M")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(data #>> ?::text[]) < ?", sql)

	_, err = filterCondition(Where("x", OpEqual, []int{1}))
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func mustCond(t *testing.T, f Filter) interface {
	ToSql() (string, []interface{}, error)
} {
	t.Helper()
	c, err := filterCondition(f)
	require.NoError(t, err)
	return c
}
