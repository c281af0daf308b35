package products

import "storefront-api/internal/validation"

var measurementsRule = validation.Object(
	validation.F("height", validation.Number().Min(0)),
	validation.F("width", validation.Number().Min(0)),
	validation.F("weight", validation.Number().Min(0)),
)

// CreateShape is the accepted body of POST /products.
var CreateShape = validation.NewShape(
	validation.F("name", validation.String()),
	validation.F("price", validation.Number().Min(0)),
	validation.F("currency", validation.String()),
	validation.F("categories", validation.Array(validation.String()).MinItems(1)),
	validation.F("measurements", measurementsRule),
)

// UpdateShape is CreateShape with every top-level field optional.
var UpdateShape = CreateShape.Partial()
