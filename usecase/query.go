package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"trend-finder/domain/model"

	"github.com/go-playground/validator/v10"
)

var queryValidator = newQueryValidator()

func newQueryValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, e.g. min_subscribers
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// NormalizeQuery trims the keywords, drops blanks and validates the query.
// Errors wrap model.ErrValidation.
func NormalizeQuery(q model.SearchQuery) (model.SearchQuery, error) {
	keywords := make([]string, 0, len(q.Keywords))
	for _, k := range q.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	q.Keywords = keywords
	if q.FailurePolicy == "" {
		q.FailurePolicy = model.FailurePolicySkip
	}
	if q.VideoType == "" {
		q.VideoType = model.VideoTypeAll
	}

	if err := queryValidator.Struct(q); err != nil {
		return q, fmt.Errorf("%w: %s", model.ErrValidation, describeValidation(err))
	}
	return q, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		switch fe.Tag() {
		case "required", "min":
			msgs = append(msgs, field+" is required")
		case "gtfield":
			msgs = append(msgs, "start date must be before end date")
		case "gtefield":
			msgs = append(msgs, field+" must not be below min_subscribers")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		case "gte", "lte":
			if field == "result_limit" {
				msgs = append(msgs, "result_limit must be between 1 and 50")
			} else {
				msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param()))
			}
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
