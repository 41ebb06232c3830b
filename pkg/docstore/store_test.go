package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/docgate/internal/migrate"
	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Path:   ":memory:",
	}, nil)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, migrate.RunMigrations(sqlDB, database.DriverSQLite))

	return New(db, nil)
}

func TestStore_SetAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.Set(ctx, "org1", "Chats", "chat456", backend.Document{"message": "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Chats", res.Collection)
	assert.Equal(t, "chat456", res.DocID)
	assert.False(t, res.UpdateTime.IsZero())

	doc, err := s.Get(ctx, "org1", "Chats", "chat456")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc["message"])

	t.Run("set replaces payload", func(t *testing.T) {
		_, err := s.Set(ctx, "org1", "Chats", "chat456", backend.Document{"other": true})
		require.NoError(t, err)

		doc, err := s.Get(ctx, "org1", "Chats", "chat456")
		require.NoError(t, err)
		assert.Equal(t, backend.Document{"other": true}, doc)
	})

	t.Run("scopes are isolated", func(t *testing.T) {
		_, err := s.Get(ctx, "org2", "Chats", "chat456")
		assert.True(t, errors.Is(err, backend.ErrNotFound))
	})
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "org1", "Users", "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestStore_ValidatesKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "org1", "", "id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection")
}

func TestStore_Merge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Set(ctx, "org1", "Chats", "c1", backend.Document{"message": "Hello", "user": "u1"})
	require.NoError(t, err)

	_, err = s.Merge(ctx, "org1", "Chats", "c1", backend.Document{"message": "Updated"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "org1", "Chats", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", doc["message"])
	assert.Equal(t, "u1", doc["user"])

	t.Run("missing document", func(t *testing.T) {
		_, err := s.Merge(ctx, "org1", "Chats", "missing", backend.Document{"a": 1})
		assert.True(t, errors.Is(err, backend.ErrNotFound))
	})
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Set(ctx, "org1", "Chats", "c1", backend.Document{"a": 1})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "org1", "Chats", "c1"))
	require.NoError(t, s.Delete(ctx, "org1", "Chats", "c1"))

	_, err = s.Get(ctx, "org1", "Chats", "c1")
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestStore_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := map[string]backend.Document{
		"a": {"status": "open", "priority": 3},
		"b": {"status": "closed", "priority": 1},
		"c": {"status": "open", "priority": 2},
		"d": {"status": "open"},
	}
	for id, doc := range seed {
		_, err := s.Set(ctx, "org1", "Tasks", id, doc)
		require.NoError(t, err)
	}
	_, err := s.Set(ctx, "org1", "Other", "x", backend.Document{"status": "open"})
	require.NoError(t, err)

	ids := func(results []backend.Document) []string {
		out := []string{}
		for _, r := range results {
			out = append(out, r["id"].(string))
		}
		return out
	}

	tests := []struct {
		name  string
		query backend.SearchQuery
		want  []string
	}{
		{
			name:  "no constraints returns collection in id order",
			query: backend.SearchQuery{Collection: "Tasks"},
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name: "equality constraint",
			query: backend.SearchQuery{
				Collection:  "Tasks",
				Constraints: map[string]any{"status": "open"},
			},
			want: []string{"a", "c", "d"},
		},
		{
			name: "numeric constraint",
			query: backend.SearchQuery{
				Collection:  "Tasks",
				Constraints: map[string]any{"priority": 2},
			},
			want: []string{"c"},
		},
		{
			name:  "order ascending with missing field last",
			query: backend.SearchQuery{Collection: "Tasks", OrderBy: "priority"},
			want:  []string{"b", "c", "a", "d"},
		},
		{
			name:  "order descending",
			query: backend.SearchQuery{Collection: "Tasks", OrderBy: "-priority"},
			want:  []string{"a", "c", "b", "d"},
		},
		{
			name:  "limit",
			query: backend.SearchQuery{Collection: "Tasks", OrderBy: "priority", Limit: 2},
			want:  []string{"b", "c"},
		},
		{
			name:  "empty collection",
			query: backend.SearchQuery{Collection: "Nothing"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(ctx, "org1", tt.query)
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Equal(t, tt.want, ids(results))
		})
	}
}

func TestStore_PreservesLargeIntegers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Set(ctx, "org1", "Counters", "hi", backend.Document{"n": json.Number("9007199254740993")})
	require.NoError(t, err)
	_, err = s.Set(ctx, "org1", "Counters", "lo", backend.Document{"n": json.Number("9007199254740992")})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "org1", "Counters", "hi")
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), doc["n"])

	results, err := s.Search(ctx, "org1", backend.SearchQuery{
		Collection:  "Counters",
		Constraints: map[string]any{"n": json.Number("9007199254740993")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hi", results[0]["id"])

	results, err = s.Search(ctx, "org1", backend.SearchQuery{Collection: "Counters", OrderBy: "-n"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "hi", results[0]["id"])
	assert.Equal(t, "lo", results[1]["id"])
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal integers", json.Number("3"), json.Number("3"), true},
		{"integer equals decimal", json.Number("2"), json.Number("2.0"), true},
		{"exponent form", json.Number("1e2"), json.Number("100"), true},
		{"large integers differ", json.Number("9007199254740993"), json.Number("9007199254740992"), false},
		{"number vs string", json.Number("1"), "1", false},
		{"nested numbers", map[string]any{"a": []any{json.Number("1")}}, map[string]any{"a": []any{json.Number("1.0")}}, true},
		{"nested length differs", []any{json.Number("1")}, []any{}, false},
		{"strings", "open", "open", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesEqual(tt.a, tt.b))
		})
	}
}

func TestStore_Close(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Get(context.Background(), "org1", "Chats", "c1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, backend.ErrNotFound))
}
