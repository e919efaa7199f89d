package listing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
)

func TestBoard_EliminarEnUltimaPaginaAjustaPagina(t *testing.T) {
	b := listing.NewBoard(listing.ClientView(), time.UTC)
	b.SetTickets(nTickets(12))

	require.Equal(t, 5, b.PageSize())
	require.Equal(t, 3, b.TotalPages())
	require.True(t, b.GoToPage(3))
	require.Len(t, b.Current().Items, 2)

	last := b.Current().Items[1]
	require.True(t, b.Remove(last.ID))
	assert.Equal(t, 3, b.CurrentPage(), "con 11 atendimentos la página 3 sigue existiendo")
	assert.Len(t, b.Current().Items, 1)

	require.True(t, b.Remove(b.Current().Items[0].ID))
	assert.Equal(t, 2, b.TotalPages())
	assert.Equal(t, 2, b.CurrentPage(), "retrocede a la nueva última página")
	assert.Len(t, b.Current().Items, 5)
}

func TestBoard_EliminarTodoNuncaBajaDeUno(t *testing.T) {
	b := listing.NewBoard(listing.AdminView(), time.UTC)
	b.SetTickets(nTickets(1))

	require.True(t, b.Remove(1))
	assert.Equal(t, 1, b.CurrentPage())
	assert.Equal(t, 0, b.TotalPages())
	assert.Empty(t, b.Current().Items)
	assert.False(t, b.Remove(1))
}

func TestBoard_CambiarFiltroVuelveAPaginaUno(t *testing.T) {
	b := listing.NewBoard(listing.AdminView(), time.UTC)
	b.SetTickets(nTickets(12))

	require.True(t, b.GoToPage(2))
	b.SetStatus("received")
	assert.Equal(t, 1, b.CurrentPage())

	require.True(t, b.GoToPage(2))
	b.SetQuery("notebook")
	assert.Equal(t, 1, b.CurrentPage())

	require.True(t, b.GoToPage(2))
	b.SetDate(base.Format(listing.DateLayout))
	assert.Equal(t, 1, b.CurrentPage())

	require.True(t, b.GoToPage(2))
	b.SetPageSize(10)
	assert.Equal(t, 1, b.CurrentPage())
	assert.Equal(t, 10, b.PageSize())

	b.ResetFilters()
	assert.False(t, b.Filters().Active())
}

func TestBoard_Navegacion(t *testing.T) {
	b := listing.NewBoard(listing.ClientView(), time.UTC)
	b.SetTickets(nTickets(7))

	assert.False(t, b.PrevPage())
	assert.True(t, b.NextPage())
	assert.False(t, b.NextPage(), "sólo hay 2 páginas")
	assert.Equal(t, 2, b.CurrentPage())
	assert.False(t, b.GoToPage(3))
	assert.False(t, b.GoToPage(0))
	assert.True(t, b.PrevPage())
}

func TestBoard_UpsertConservaNombreRegistrado(t *testing.T) {
	b := listing.NewBoard(listing.AdminView(), time.UTC)
	orig := ticket(1, entity.StatusReceived, 0)
	orig.RegisteredUserName = "Ana Registrada"
	b.SetTickets([]*entity.Ticket{orig})

	updated := *orig
	updated.RegisteredUserName = ""
	updated.Status = entity.StatusFinished
	b.Upsert(&updated)

	got := b.Find(1)
	require.NotNil(t, got)
	assert.Equal(t, entity.StatusFinished, got.Status)
	assert.Equal(t, "Ana Registrada", got.RegisteredUserName)
	assert.Equal(t, 1, b.Len())

	b.SetStatus("received")
	assert.Empty(t, b.Current().Items, "el atendimento finalizado queda fuera del filtro received")
}

func TestBoard_SetTicketsCopiaColeccion(t *testing.T) {
	ts := nTickets(3)
	b := listing.NewBoard(listing.ClientView(), time.UTC)
	b.SetTickets(ts)
	b.Remove(2)

	assert.Len(t, ts, 3, "el slice del llamador no se altera")
	assert.Equal(t, listing.Metrics{Total: 2}, b.Metrics())
}

func TestView_Acciones(t *testing.T) {
	assert.True(t, listing.AdminView().Allows(listing.ActionDelete))
	assert.True(t, listing.AdminView().Allows(listing.ActionChangeStatus))
	assert.False(t, listing.ClientView().Allows(listing.ActionChangeStatus))
	assert.True(t, listing.ClientView().Allows(listing.ActionView))
	assert.Equal(t, entity.RoleAdmin, listing.ViewFor("admin").Role)
	assert.Equal(t, entity.RoleClient, listing.ViewFor("desconocido").Role)
}
