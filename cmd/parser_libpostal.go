//go:build libpostal

package main

import (
	"fmt"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/address"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/address/postal"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/config"
)

func newTagger(name string) (address.Tagger, error) {
	switch name {
	case config.ParserUS:
		return address.USTagger{}, nil
	case config.ParserLibpostal:
		return postal.New(), nil
	}
	return nil, fmt.Errorf("unknown address parser %q", name)
}
