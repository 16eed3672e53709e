// Copyright 2026 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package osmapi

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"m4o.io/changesets"
	"m4o.io/changesets/model"
)

// decodeChanges reads an osmChange document. The document groups entity
// versions into create, modify and delete blocks; the order of the
// versions across all blocks is kept.
func decodeChanges(r io.Reader) ([]model.Change, error) {
	dec := xml.NewDecoder(r)
	changes := []model.Change{}

	var (
		depth  int
		action model.Action
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if depth != 0 {
				return nil, fmt.Errorf("%w: decoding osmChange: %w", changesets.ErrUpstreamUnavailable, io.ErrUnexpectedEOF)
			}

			return changes, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: decoding osmChange: %w", changesets.ErrUpstreamUnavailable, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch depth {
			case 0:
				if t.Name.Local != "osmChange" {
					return nil, fmt.Errorf("%w: unexpected document <%s>", changesets.ErrMalformedChange, t.Name.Local)
				}
			case 1:
				action, err = model.ParseAction(t.Name.Local)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", changesets.ErrMalformedChange, err)
				}
			default:
				c, err := decodeChange(dec, t, action)
				if err != nil {
					return nil, err
				}

				changes = append(changes, c)

				// DecodeElement consumed the end element
				continue
			}

			depth++
		case xml.EndElement:
			depth--
		}
	}
}

func decodeChange(dec *xml.Decoder, start xml.StartElement, action model.Action) (model.Change, error) {
	t, err := model.ParseEntityType(start.Name.Local)
	if err != nil {
		return model.Change{}, fmt.Errorf("%w: %s block: %w", changesets.ErrMalformedChange, action, err)
	}

	var e xmlElement
	if err := dec.DecodeElement(&e, &start); err != nil {
		return model.Change{}, fmt.Errorf("%w: decoding %s: %w", changesets.ErrUpstreamUnavailable, t, err)
	}

	return model.Change{
		Action: action,
		Ref:    model.Ref{Type: t, ID: model.ID(e.ID), Version: e.Version},
	}, nil
}
