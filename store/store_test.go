package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipx_go/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewInMemory()
	require.NoError(t, err)
	return s
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("Dr. Ada", "Ada@Example.com", "secret123", models.RoleSeller)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.Password)

	_, err = s.CreateUser("Other", "ada@example.com", "whatever", models.RoleBuyer)
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.Authenticate("ada@example.com", "secret123", models.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.Password)

	_, err = s.Authenticate("ada@example.com", "wrong", models.RoleSeller)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate("ada@example.com", "secret123", models.RoleBuyer)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate("nobody@example.com", "secret123", models.RoleSeller)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStoresAreIsolated(t *testing.T) {
	first := newTestStore(t)
	second := newTestStore(t)

	_, err := first.CreateUser("Dr. Ada", "ada@example.com", "secret123", models.RoleSeller)
	require.NoError(t, err)
	_, err = second.CreateUser("Dr. Ada", "ada@example.com", "secret123", models.RoleSeller)
	assert.NoError(t, err)
}

func TestProductOwnershipAndTransitions(t *testing.T) {
	s := newTestStore(t)
	owner := &models.User{ID: "s1", Name: "Dr. Ada"}

	p, err := s.CreateProduct(models.EquipmentDraft{Name: " Monitor ", Status: models.ConditionUsed, Price: 300}, owner)
	require.NoError(t, err)
	assert.Equal(t, "Monitor", p.Name)
	assert.Equal(t, models.SaleActive, p.SaleStatus)

	mine, err := s.ListProducts("s1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	others, err := s.ListProducts("s2")
	require.NoError(t, err)
	assert.Empty(t, others)

	name := "Hijacked"
	_, err = s.UpdateProduct(p.ID, "s2", models.EquipmentPatch{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	price := 250.0
	updated, err := s.UpdateProduct(p.ID, "s1", models.EquipmentPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.Price)
	assert.Equal(t, "Monitor", updated.Name)

	sold, err := s.SetSaleStatus(p.ID, "s1", models.SaleSold)
	require.NoError(t, err)
	assert.Equal(t, models.SaleSold, sold.SaleStatus)

	_, err = s.SetSaleStatus(p.ID, "s1", models.SaleActive)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	same, err := s.SetSaleStatus(p.ID, "s1", models.SaleSold)
	require.NoError(t, err)
	assert.Equal(t, models.SaleSold, same.SaleStatus)

	stored, err := s.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SaleSold, stored.SaleStatus)
	assert.Equal(t, 250.0, stored.Price)

	_, err = s.GetProduct("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductsListInCreationOrder(t *testing.T) {
	s := newTestStore(t)
	owner := &models.User{ID: "s1", Name: "Dr. Ada"}

	for _, name := range []string{"Bed", "Cane", "Apron"} {
		_, err := s.CreateProduct(models.EquipmentDraft{Name: name, Status: models.ConditionNew}, owner)
		require.NoError(t, err)
	}

	all, err := s.ListProducts("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bed", all[0].Name)
	assert.Equal(t, "Cane", all[1].Name)
	assert.Equal(t, "Apron", all[2].Name)
}

func TestMessagesFollowProduct(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProduct(models.EquipmentDraft{Name: "Bed", Status: models.ConditionNew}, &models.User{ID: "s1"})
	require.NoError(t, err)

	for _, body := range []string{"first", "second"} {
		_, err := s.AddMessage(models.SendMessageRequest{SenderID: "b1", Sender: "Ben", EquipmentID: p.ID, Body: body, Timestamp: "2024-05-01T10:00:00.000Z"})
		require.NoError(t, err)
	}
	msgs, err := s.ListMessages(p.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)

	_, err = s.AddMessage(models.SendMessageRequest{EquipmentID: "missing", Body: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteProduct(p.ID, "s1"))
	msgs, err = s.ListMessages(p.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NotNil(t, msgs)

	_, err = s.GetProduct(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
