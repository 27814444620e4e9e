//go:build !libpostal

package main

import (
	"errors"
	"fmt"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/address"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/config"
)

func newTagger(name string) (address.Tagger, error) {
	switch name {
	case config.ParserUS:
		return address.USTagger{}, nil
	case config.ParserLibpostal:
		return nil, errors.New("libpostal parser is not compiled in; rebuild with -tags libpostal")
	}
	return nil, fmt.Errorf("unknown address parser %q", name)
}
