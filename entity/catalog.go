package entity

import (
	"github.com/rs/zerolog"

	"github.com/labhub-io/labhub-go/client"
	"github.com/labhub-io/labhub-go/crud"
)

// Ready-made repositories for the entity catalog. Use crud.NewRepository
// directly when you want request logging; these bind a disabled logger.

// Products returns the product repository for the given capability.
func Products(c client.Doer) *crud.Repository[*Product] {
	return crud.NewRepository(c, ProductsPath, NewProduct, zerolog.Nop())
}

// Experiments returns the experiment repository for the given capability.
func Experiments(c client.Doer) *crud.Repository[*Experiment] {
	return crud.NewRepository(c, ExperimentsPath, NewExperiment, zerolog.Nop())
}

// Variables returns the variable repository for the given capability.
func Variables(c client.Doer) *crud.Repository[*Variable] {
	return crud.NewRepository(c, VariablesPath, NewVariable, zerolog.Nop())
}
