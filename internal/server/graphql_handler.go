package server

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	jsoniter "github.com/json-iterator/go"

	"github.com/SirClappington/cf-graphql-demo/internal/errors"
	"github.com/SirClappington/cf-graphql-demo/internal/schema"
	"github.com/SirClappington/cf-graphql-demo/internal/services"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

type graphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func (s *Server) handleGraphQL(c *gin.Context) {
	start := time.Now()

	req, err := parseRequest(c)
	if err != nil {
		s.metrics.ObserveGraphQL("invalid", time.Since(start))
		handleError(c, err)
		return
	}

	timeline := services.NewTimeline()
	ctx := services.WithTimeline(schema.WithSource(c.Request.Context(), s.source), timeline)

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	if !s.config.DetailedErrors {
		for _, e := range result.Errors {
			delete(e.Extensions, "details")
		}
	}
	result.Extensions = map[string]interface{}{
		"cf-graphql": gin.H{
			"version":  Version,
			"timeline": timeline.Entries(),
		},
	}

	status := "ok"
	if len(result.Errors) > 0 {
		status = "error"
		s.logger.Printf("GraphQL request finished with %d error(s), first: %s", len(result.Errors), result.Errors[0].Message)
	}
	s.metrics.ObserveGraphQL(status, time.Since(start))

	c.JSON(http.StatusOK, result)
}

// parseRequest accepts GET query parameters, JSON bodies and
// application/graphql bodies.
func parseRequest(c *gin.Context) (*graphQLRequest, error) {
	var req graphQLRequest

	switch c.Request.Method {
	case http.MethodGet:
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return nil, errors.NewValidationError("variables must be a JSON object")
			}
		}

	case http.MethodPost:
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		mediaType := "application/json"
		if ct := c.GetHeader("Content-Type"); ct != "" {
			parsed, _, err := mime.ParseMediaType(ct)
			if err != nil {
				return nil, errors.NewValidationError("invalid Content-Type header")
			}
			mediaType = parsed
		}

		switch mediaType {
		case "application/json":
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, errors.NewValidationError("body must be a JSON object with a query field")
			}
		case "application/graphql":
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				return nil, errors.NewValidationError("could not read request body")
			}
			req.Query = string(body)
		default:
			return nil, errors.NewValidationError("unsupported Content-Type " + mediaType)
		}

	default:
		return nil, errors.NewValidationError("GraphQL only supports GET and POST requests")
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.NewValidationError("must provide query string")
	}
	return &req, nil
}
