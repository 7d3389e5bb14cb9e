// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/scrap-export/pkg/types"
)

var validate = validator.New()

// Decode parses a blob.json payload into a Scrap and checks that every
// comment carries a timestamp. A scrap without comments decodes fine; it is
// the renderer that refuses it.
func Decode(data []byte) (*types.Scrap, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedRecord)
	}

	var scrap types.Scrap
	if err := json.Unmarshal(trimmed, &scrap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := validate.Struct(&scrap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &scrap, nil
}
