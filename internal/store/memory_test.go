package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/clientdesk/internal/client"
)

func sampleClient(code, lastName string) *client.Client {
	bonus := 50
	postal := 101000
	return &client.Client{
		CardCode:    code,
		LastName:    lastName,
		FirstName:   "John",
		PhoneMobile: "+79161234567",
		GenderID:    "",
		Birthday:    time.Date(1990, 2, 1, 0, 0, 0, 0, time.UTC),
		City:        "Moscow",
		PostalCode:  &postal,
		Bonus:       &bonus,
	}
}

func TestMemoryInsertFindRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := sampleClient("123456", "Smith")
	require.NoError(t, m.Insert(ctx, in))

	got, err := m.FindByCode(ctx, "123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in, got)

	// The returned record is a copy; mutating it must not leak into the store.
	got.LastName = "changed"
	again, err := m.FindByCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, "Smith", again.LastName)
}

func TestMemoryFindAbsentIsNotError(t *testing.T) {
	got, err := NewMemory().FindByCode(context.Background(), "000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Insert(ctx, sampleClient("1", "Smith")))
	err := m.Insert(ctx, sampleClient("1", "Jones"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUpdateFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, sampleClient("1", "Smith")))

	updated := sampleClient("999", "Smythe") // key on the record is ignored
	updated.City = "Kazan"
	require.NoError(t, m.UpdateFields(ctx, "1", updated))

	got, err := m.FindByCode(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.CardCode, "update must not change the key")
	assert.Equal(t, "Smythe", got.LastName)
	assert.Equal(t, "Kazan", got.City)

	err = m.UpdateFields(ctx, "404", updated)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRenameKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, sampleClient("A1", "Smith")))

	require.NoError(t, m.RenameKey(ctx, "A1", "B2"))

	gone, err := m.FindByCode(ctx, "A1")
	require.NoError(t, err)
	assert.Nil(t, gone, "old key must be free after rename")

	got, err := m.FindByCode(ctx, "B2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "B2", got.CardCode)
	assert.Equal(t, "Smith", got.LastName)

	assert.ErrorIs(t, m.RenameKey(ctx, "A1", "C3"), ErrNotFound)

	require.NoError(t, m.Insert(ctx, sampleClient("D4", "Jones")))
	assert.ErrorIs(t, m.RenameKey(ctx, "D4", "B2"), ErrDuplicate)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, sampleClient("1", "Smith")))

	require.NoError(t, m.Delete(ctx, "1"))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Delete(ctx, "1"), ErrNotFound)
}

func TestMemoryListOrderedByLastName(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	empty, err := m.ListAllOrderedByLastName(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty, "empty store must yield an empty slice, not nil")
	assert.Len(t, empty, 0)

	require.NoError(t, m.Insert(ctx, sampleClient("3", "Ivanov")))
	require.NoError(t, m.Insert(ctx, sampleClient("1", "Petrov")))
	require.NoError(t, m.Insert(ctx, sampleClient("2", "Abramov")))

	all, err := m.ListAllOrderedByLastName(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Abramov", all[0].LastName)
	assert.Equal(t, "Ivanov", all[1].LastName)
	assert.Equal(t, "Petrov", all[2].LastName)
}
