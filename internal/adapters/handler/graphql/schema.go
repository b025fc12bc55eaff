package graphql

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/handler"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

var tallyType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "Tally",
		Fields: graphql.Fields{
			"yes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Tally).Yes, nil
				},
			},
			"no": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Tally).No, nil
				},
			},
			"total": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Tally).Total(), nil
				},
			},
			"yesPercent": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Tally).YesPercent(), nil
				},
			},
			"noPercent": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Tally).NoPercent(), nil
				},
			},
		},
	},
)

type resolver struct {
	service ports.VoteService
	log     logrus.FieldLogger
}

// publicError hides infrastructure failures behind ErrInternal.
func (r *resolver) publicError(err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	r.log.WithError(err).Error("graphql resolver failed")
	return domain.ErrInternal
}

func (r *resolver) tally(p graphql.ResolveParams) (interface{}, error) {
	tally, err := r.service.GetTally(p.Context)
	if err != nil {
		return nil, r.publicError(err)
	}
	return tally, nil
}

// vote takes a nullable choice so that a missing value is reported as a
// validation error on choice rather than a schema error.
func (r *resolver) vote(p graphql.ResolveParams) (interface{}, error) {
	choice, _ := p.Args["choice"].(string)
	if err := r.service.SubmitVote(p.Context, choice); err != nil {
		return false, r.publicError(err)
	}
	return true, nil
}

func NewSchema(service ports.VoteService, log logrus.FieldLogger) (graphql.Schema, error) {
	r := &resolver{service: service, log: log}

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"tally": &graphql.Field{
					Type:    graphql.NewNonNull(tallyType),
					Resolve: r.tally,
				},
			},
		},
	)

	mutationType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"vote": &graphql.Field{
					Type: graphql.Boolean,
					Args: graphql.FieldConfigArgument{
						"choice": &graphql.ArgumentConfig{
							Type: graphql.String,
						},
					},
					Resolve: r.vote,
				},
			},
		},
	)

	return graphql.NewSchema(
		graphql.SchemaConfig{
			Query:    queryType,
			Mutation: mutationType,
		},
	)
}

func NewHandler(service ports.VoteService, log logrus.FieldLogger) (http.Handler, error) {
	schema, err := NewSchema(service, log)
	if err != nil {
		return nil, err
	}
	return postOnlyMutations(handler.New(&handler.Config{
		Schema: &schema,
		Pretty: true,
	})), nil
}

// postOnlyMutations answers 405 when a mutation arrives in a GET query
// string. Links, prefetchers and image tags must not be able to cast votes.
func postOnlyMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && hasMutation(r.URL.Query().Get("query")) {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "mutations must be sent with POST", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// hasMutation reports whether any operation in the document is a mutation.
// Documents that do not parse are left for the handler to reject.
func hasMutation(query string) bool {
	if query == "" {
		return false
	}
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok && op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}
