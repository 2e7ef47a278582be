// Package models holds the population models that ship with popsim:
// compartmental epidemics built on flow edges, and directly specified
// ecological, demographic and economic systems.
package models

import (
	"errors"

	"github.com/san-kum/popsim/internal/dynamo"
)

var ErrInvalidParams = errors.New("models: invalid parameters")

// specs fills labels, intervals and current values for display.
func specs(p dynamo.Params, in ...dynamo.ParamSpec) []dynamo.ParamSpec {
	out := make([]dynamo.ParamSpec, len(in))
	for i, s := range in {
		out[i] = s.Fill(p)
	}
	return out
}
