package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeadlineScreener/internal/domain"
)

func TestDefaultsAreComplete(t *testing.T) {
	t.Parallel()

	for _, tax := range Defaults() {
		assert.NotEmpty(t, tax.Questions, tax.Name)
		assert.NotEmpty(t, tax.Technologies, tax.Name)
		assert.Equal(t, ProjectStatuses, tax.Statuses, tax.Name)
	}
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{Cement, Iron, Steel}, reg.Names())

	cement, err := reg.Lookup(" Cement ")
	require.NoError(t, err)
	assert.Contains(t, cement.Technologies, "Meca clay")

	_, err = reg.Lookup("paper")
	assert.ErrorIs(t, err, ErrUnknownTaxonomy)
}

func TestRegistryLookupReturnsCopies(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)

	first, err := reg.Lookup(Steel)
	require.NoError(t, err)
	first.Questions[0] = "mutated"

	second, err := reg.Lookup(Steel)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second.Questions[0])
}

func TestRegistryOverrides(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(
		domain.Taxonomy{Name: "Steel", Questions: []string{"Is this about sports?"}},
		domain.Taxonomy{Name: "aluminium", Questions: []string{"Is this about recipes?"}, Technologies: []string{"Inert anode"}},
	)
	require.NoError(t, err)

	steel, err := reg.Lookup(Steel)
	require.NoError(t, err)
	assert.Equal(t, []string{"Is this about sports?"}, steel.Questions)
	assert.NotEmpty(t, steel.Technologies)

	alu, err := reg.Lookup("aluminium")
	require.NoError(t, err)
	assert.Equal(t, ProjectStatuses, alu.Statuses)

	_, err = NewRegistry(domain.Taxonomy{Name: "empty"})
	assert.Error(t, err)
}

func TestRegistryTechnologiesIsUnion(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)

	all := reg.Technologies()
	seen := map[string]int{}
	for _, tech := range all {
		seen[tech]++
	}
	for tech, n := range seen {
		assert.Equal(t, 1, n, tech)
	}
	for _, tax := range Defaults() {
		for _, tech := range tax.Technologies {
			assert.Contains(t, seen, tech, tax.Name)
		}
	}
	assert.Contains(t, all, "Meca clay")
	assert.Contains(t, all, "briquetted iron")
	assert.Equal(t, "CCS (carbon capture storage)", all[0])
}
