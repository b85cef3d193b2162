package portfolio

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("X", 3600))
	p := New(CreateInput{Name: "Ada"}, now)

	_, err := uuid.Parse(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "", p.Description)
	assert.NotNil(t, p.Skills)
	assert.Empty(t, p.Skills)
	assert.Equal(t, "2026-03-04T04:06:07.891Z", p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestNewCopiesSkills(t *testing.T) {
	skills := []string{"rust", "go"}
	p := New(CreateInput{Name: "Ada", Skills: skills}, time.Now())
	skills[0] = "changed"
	assert.Equal(t, []string{"rust", "go"}, p.Skills)
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		p := New(CreateInput{Name: "n"}, time.Now())
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p := Portfolio{ID: "1", Name: "Ada"}.Normalize(now)
	assert.Equal(t, []string{}, p.Skills)
	assert.Equal(t, "2026-01-01T00:00:00.000Z", p.UpdatedAt)
	assert.Equal(t, p.UpdatedAt, p.CreatedAt)

	kept := Portfolio{ID: "1", Skills: []string{"go"}, CreatedAt: "a", UpdatedAt: "b"}.Normalize(now)
	assert.Equal(t, []string{"go"}, kept.Skills)
	assert.Equal(t, "a", kept.CreatedAt)
	assert.Equal(t, "b", kept.UpdatedAt)
}

func TestTimestampsSortLexically(t *testing.T) {
	a := Timestamp(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := Timestamp(time.Date(2026, 1, 1, 0, 0, 0, 1_000_000, time.UTC))
	assert.Less(t, a, b)
}
