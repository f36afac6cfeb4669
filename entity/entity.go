// Package entity contains the typed LabHub entities and their factories.
// Shapes stay lean: data plus the minimal follow-up calls an entity handle
// supports. Field validation on construction is the factories' job, the
// repositories below never look inside.
package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/labhub-io/labhub-go/client"
)

// Resource paths relative to the API base address.
const (
	ProductsPath    = "api/v2/products"
	ExperimentsPath = "api/v2/experiments"
	VariablesPath   = "api/v2/variables"
)

var valid = validator.New()

// Product is a manufactured product definition.
type Product struct {
	ID          string    `mapstructure:"id" validate:"required"`
	Code        string    `mapstructure:"code" validate:"required"`
	Name        string    `mapstructure:"name"`
	Description string    `mapstructure:"description"`
	Archived    bool      `mapstructure:"archived"`
	CreatedAt   time.Time `mapstructure:"createdAt"`

	doer client.Doer
}

// Experiment is a recorded process run against a product.
type Experiment struct {
	ID          string    `mapstructure:"id" validate:"required"`
	Name        string    `mapstructure:"name" validate:"required"`
	Description string    `mapstructure:"description"`
	ProductID   string    `mapstructure:"productId"`
	VariableIDs []string  `mapstructure:"variableIds"`
	Archived    bool      `mapstructure:"archived"`
	CreatedAt   time.Time `mapstructure:"createdAt"`

	doer client.Doer
}

// Product fetches the product this experiment was run against, using the
// capability handle the experiment was constructed with.
func (e *Experiment) Product(ctx context.Context) (*Product, error) {
	if e.ProductID == "" {
		return nil, fmt.Errorf("experiment %s has no product reference", e.ID)
	}
	return Products(e.doer).Get(ctx, e.ProductID)
}

// Variable is a measured or set process variable definition.
type Variable struct {
	ID        string    `mapstructure:"id" validate:"required"`
	Code      string    `mapstructure:"code" validate:"required"`
	Name      string    `mapstructure:"name"`
	Group     string    `mapstructure:"group"`
	Unit      string    `mapstructure:"unit"`
	Archived  bool      `mapstructure:"archived"`
	CreatedAt time.Time `mapstructure:"createdAt"`
}

// NewProduct is the crud.Factory for products.
func NewProduct(fields map[string]any, c client.Doer) (*Product, error) {
	var p Product
	if err := decode(fields, &p); err != nil {
		return nil, fmt.Errorf("product: %w", err)
	}
	p.doer = c
	return &p, nil
}

// NewExperiment is the crud.Factory for experiments.
func NewExperiment(fields map[string]any, c client.Doer) (*Experiment, error) {
	var e Experiment
	if err := decode(fields, &e); err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	e.doer = c
	return &e, nil
}

// NewVariable is the crud.Factory for variables.
func NewVariable(fields map[string]any, _ client.Doer) (*Variable, error) {
	var v Variable
	if err := decode(fields, &v); err != nil {
		return nil, fmt.Errorf("variable: %w", err)
	}
	return &v, nil
}

// decode maps the server's field map onto the typed entity and checks the
// required-field contract. Input is decoded weakly because the API is loose
// about numeric widths, and createdAt arrives as an RFC 3339 string.
func decode(fields map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("could not decode fields: %w", err)
	}
	if err := valid.Struct(out); err != nil {
		return fmt.Errorf("missing required fields: %w", err)
	}
	return nil
}
