package graph

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/kitchenkin/recipes/backend/internal/types"
)

// Request is a GraphQL request body as sent by clients
type Request struct {
	Query         string                 `json:"query" binding:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Limiter throttles a user's requests. Check writes the rejection itself
// and reports whether the request may continue.
type Limiter interface {
	Check(c *gin.Context, key string) bool
}

// Handler serves GraphQL requests over gin
type Handler struct {
	schema   graphql.Schema
	mutation Limiter
}

// NewHandler creates a GraphQL handler for the schema
func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// WithMutationLimiter throttles mutation operations of signed-in users
func (h *Handler) WithMutationLimiter(l Limiter) *Handler {
	h.mutation = l
	return h
}

// Serve executes the request against the schema. The acting user is read
// from the request context, where the auth middleware placed it.
func (h *Handler) Serve(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"message": "Invalid GraphQL request body"}},
		})
		return
	}

	if h.mutation != nil && isMutation(req.Query, req.OperationName) {
		if identity := types.IdentityFromContext(c.Request.Context()); identity != nil {
			if !h.mutation.Check(c, identity.ID.String()) {
				return
			}
		}
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request.Context(),
	})

	c.JSON(http.StatusOK, result)
}

// isMutation reports whether the operation that will run is a mutation.
// Unparseable documents are left for graphql.Do to reject.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		return op.Operation == ast.OperationTypeMutation
	}
	return false
}
