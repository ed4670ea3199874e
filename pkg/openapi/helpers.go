package openapi

const jsonMediaType = "application/json"

// SchemaRef references the named component schema.
func SchemaRef(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

// ResponseRef references the named component response.
func ResponseRef(name string) *Response {
	return &Response{Ref: "#/components/responses/" + name}
}

// RequestBodyJSON creates a JSON request body referencing the named schema.
func RequestBodyJSON(schemaName string, required bool) *RequestBody {
	return RequestBodySchema(SchemaRef(schemaName), required)
}

// RequestBodySchema creates a JSON request body with an inline schema.
func RequestBodySchema(schema *Schema, required bool) *RequestBody {
	return &RequestBody{
		Required: required,
		Content:  map[string]*MediaType{jsonMediaType: {Schema: schema}},
	}
}

// ResponseJSON creates a JSON response referencing the named schema.
func ResponseJSON(description, schemaName string) *Response {
	return ResponseSchema(description, SchemaRef(schemaName))
}

// ResponseSchema creates a JSON response with an inline schema.
func ResponseSchema(description string, schema *Schema) *Response {
	return &Response{
		Description: description,
		Content:     map[string]*MediaType{jsonMediaType: {Schema: schema}},
	}
}

// PathParam creates a required UUID path parameter.
func PathParam(name, description string) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "path",
		Required:    true,
		Description: description,
		Schema:      UUID(),
	}
}

// QueryParam creates an optional or required query parameter of the given
// primitive type.
func QueryParam(name, typ, description string, required bool) *Parameter {
	return QueryParamSchema(name, &Schema{Type: typ}, description, required)
}

// QueryParamSchema creates a query parameter with an explicit schema.
func QueryParamSchema(name string, schema *Schema, description string, required bool) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "query",
		Required:    required,
		Description: description,
		Schema:      schema,
	}
}

func String() *Schema   { return &Schema{Type: "string"} }
func Integer() *Schema  { return &Schema{Type: "integer"} }
func UUID() *Schema     { return &Schema{Type: "string", Format: "uuid"} }
func DateTime() *Schema { return &Schema{Type: "string", Format: "date-time"} }

// ArrayOf wraps items in an array schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// StringArray is ArrayOf(String()).
func StringArray() *Schema {
	return ArrayOf(String())
}

// Enum creates a string schema restricted to values.
func Enum[S ~string](values ...S) *Schema {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return &Schema{Type: "string", Enum: out}
}

// Object creates an object schema with the given properties and required
// property names.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: properties, Required: required}
}
