package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

func quotation(gst float64, services ...domain.Service) *domain.Quotation {
	return &domain.Quotation{ID: "q-1", Services: services, GSTPercentage: gst}
}

func TestReconcile_CompleteRemoteReplacesIncompleteLocal(t *testing.T) {
	local := quotation(0, domain.Service{Name: "SEO", Quantity: 1, Price: 0})
	remote := quotation(0, domain.Service{Name: "SEO", Quantity: 1, Price: 10000})

	got := Reconcile(local, remote)

	require.Len(t, got.Services, 1)
	assert.Equal(t, 10000.0, got.Services[0].Price)
	assert.Equal(t, 10000.0, got.Services[0].Amount)
	assert.Equal(t, 10000.0, got.GrandTotal)
}

func TestReconcile_IncompleteRemoteKeepsLocal(t *testing.T) {
	local := quotation(0, domain.Service{Name: "SEO", Quantity: 2, Price: 5000})
	remote := quotation(0, domain.Service{Name: "SEO", Quantity: 0, Price: 0})

	got := Reconcile(local, remote)

	require.Len(t, got.Services, 1)
	assert.Equal(t, 2, got.Services[0].Quantity)
	assert.Equal(t, 5000.0, got.Services[0].Price)
	assert.Equal(t, 10000.0, got.Subtotal)
}

func TestReconcile_NameMatchIsCaseInsensitive(t *testing.T) {
	local := quotation(0, domain.Service{Name: "Logo Design", Quantity: 1, Price: 0})
	remote := quotation(0, domain.Service{Name: "logo design", Quantity: 3, Price: 1200})

	got := Reconcile(local, remote)

	require.Len(t, got.Services, 1)
	assert.Equal(t, "logo design", got.Services[0].Name)
	assert.Equal(t, 3600.0, got.Subtotal)
}

func TestReconcile_AppendsNewRemoteServicesInOrder(t *testing.T) {
	local := quotation(0,
		domain.Service{Name: "Hosting", Quantity: 1, Price: 2000},
	)
	remote := quotation(18,
		domain.Service{Name: "Hosting", Quantity: 1, Price: 2000},
		domain.Service{Name: "SSL Certificate", Quantity: 1, Price: 500},
		domain.Service{Name: "Domain", Quantity: 1, Price: 0},
	)

	got := Reconcile(local, remote)

	names := make([]string, 0, len(got.Services))
	for _, s := range got.Services {
		names = append(names, s.Name)
	}

	assert.Equal(t, []string{"Hosting", "SSL Certificate", "Domain"}, names)
	assert.Equal(t, 18.0, got.GSTPercentage)
	assert.Equal(t, 2500.0, got.Subtotal)
	assert.Equal(t, 450.0, got.GSTAmount)
	assert.Equal(t, 2950.0, got.GrandTotal)
}

func TestReconcile_DropsParseArtifacts(t *testing.T) {
	local := quotation(0,
		domain.Service{Name: "Logo quantity 3", Quantity: 1, Price: 0},
		domain.Service{Name: "Logo", Quantity: 3, Price: 100},
	)
	remote := quotation(0,
		domain.Service{Name: "Banner price 500", Quantity: 1, Price: 500},
	)

	got := Reconcile(local, remote)

	require.Len(t, got.Services, 1)
	assert.Equal(t, "Logo", got.Services[0].Name)
}

func TestReconcile_RemoteTotalsAreRecomputed(t *testing.T) {
	local := quotation(0, domain.Service{Name: "A", Quantity: 2, Price: 100})
	remote := quotation(10, domain.Service{Name: "A", Quantity: 2, Price: 100})
	remote.Subtotal = 1
	remote.GrandTotal = 99999

	got := Reconcile(local, remote)

	assert.Equal(t, 200.0, got.Subtotal)
	assert.Equal(t, 20.0, got.GSTAmount)
	assert.Equal(t, 220.0, got.GrandTotal)
}

func TestReconcile_ZeroRemoteGSTKeepsLocal(t *testing.T) {
	local := quotation(18, domain.Service{Name: "A", Quantity: 1, Price: 100})
	remote := quotation(0)

	got := Reconcile(local, remote)

	assert.Equal(t, 18.0, got.GSTPercentage)
	assert.Equal(t, 118.0, got.GrandTotal)
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	local := quotation(0, domain.Service{Name: "SEO", Quantity: 1, Price: 0})
	remote := quotation(0, domain.Service{Name: "SEO", Quantity: 1, Price: 10000})

	Reconcile(local, remote)

	assert.Zero(t, local.Services[0].Price)
	assert.Equal(t, 10000.0, remote.Services[0].Price)
}

func TestReconcile_NilSides(t *testing.T) {
	local := quotation(0, domain.Service{Name: "A", Quantity: 1, Price: 5})

	assert.Equal(t, 5.0, Reconcile(local, nil).GrandTotal)
	assert.Equal(t, 5.0, Reconcile(nil, local).GrandTotal)
}

func TestReconcile_KeepsLocalCounterpart(t *testing.T) {
	local := quotation(0)
	remote := quotation(0)
	remote.QuotationTo = &domain.Counterpart{CustomerName: "Remote"}

	assert.Equal(t, "Remote", Reconcile(local, remote).QuotationTo.CustomerName)

	local.QuotationTo = &domain.Counterpart{CustomerName: "Local"}
	assert.Equal(t, "Local", Reconcile(local, remote).QuotationTo.CustomerName)
}

func TestAdopt(t *testing.T) {
	remote := quotation(18,
		domain.Service{Name: "Hosting", Quantity: 1, Price: 2000},
		domain.Service{Name: "Hosting qty 1", Quantity: 1, Price: 0},
	)

	got := Adopt(remote)

	require.Len(t, got.Services, 1)
	assert.Equal(t, 2360.0, got.GrandTotal)
	assert.Len(t, remote.Services, 2)
	assert.NotNil(t, Adopt(nil))
}

func TestIsParseArtifact(t *testing.T) {
	assert.True(t, IsParseArtifact("Logo Quantity 3"))
	assert.True(t, IsParseArtifact("x rate 10"))
	assert.False(t, IsParseArtifact("Rate Card Design"))
	assert.False(t, IsParseArtifact("Quantity Surveying"))
}
