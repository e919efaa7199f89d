package presenter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
	"github.com/jhoicas/techfix-api/internal/presenter"
)

func sampleTicket() *entity.Ticket {
	created := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	return &entity.Ticket{
		ID: 42, ClientCPF: "11144477735", ClientName: "Ana", ClientPhone: "11987654321",
		EquipmentType: "Notebook", Description: "não liga", Status: entity.StatusAnalysis,
		CreatedAt: created, UpdatedAt: created.Add(90 * time.Minute),
	}
}

func TestNewDetail_Admin_OfreceLosCincoEstados(t *testing.T) {
	d := presenter.NewDetail(sampleTicket(), listing.AdminView(), time.UTC)

	assert.Equal(t, "#42 - Notebook", d.Title, "sin tipo de servicio el título usa el equipo")
	assert.Equal(t, "111.444.777-35", d.ClientCPF)
	assert.Equal(t, "(11) 98765-4321", d.ClientPhone)
	assert.Equal(t, "10/03/2025 12:30", d.CreatedAt)
	assert.Equal(t, "10/03/2025 14:00", d.UpdatedAt)
	assert.Equal(t, "Em Análise", d.StatusLabel)

	require.True(t, d.CanChangeStatus())
	require.Len(t, d.StatusOptions, 5)
	for i, opt := range d.StatusOptions {
		assert.Equal(t, entity.Statuses[i], opt.Status)
		assert.Equal(t, opt.Status == entity.StatusAnalysis, opt.Current)
	}
}

func TestNewDetail_Cliente_SinControlDeEstado(t *testing.T) {
	d := presenter.NewDetail(sampleTicket(), listing.ClientView(), time.UTC)
	assert.False(t, d.CanChangeStatus())
	assert.Empty(t, d.StatusOptions)
}

func TestLines_CamposOpcionales(t *testing.T) {
	tk := sampleTicket()
	tk.ServiceType = "Reparo"
	tk.PhotoURL = "/uploads/service_photos/x.png"
	tk.ClientPhone = ""

	lines := presenter.NewDetail(tk, listing.ClientView(), time.UTC).Lines()
	assert.Contains(t, lines, "Tipo de Serviço: Reparo")
	assert.Contains(t, lines, "Foto: /uploads/service_photos/x.png")
	for _, l := range lines {
		assert.NotContains(t, l, "Telefone")
	}
	assert.Equal(t, "#42 - Reparo [Em Análise]", lines[0])
}

func TestNewDetail_CamposVacios(t *testing.T) {
	d := presenter.NewDetail(&entity.Ticket{ID: 1}, listing.ClientView(), time.UTC)
	assert.Equal(t, "N/A", d.ClientName)
	assert.Equal(t, "N/A", d.ClientCPF)
	assert.Equal(t, "N/A", d.CreatedAt)
	assert.Equal(t, "N/A", d.StatusLabel)
}
