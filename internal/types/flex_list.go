package types

import (
	"bytes"
	"encoding/json"
)

// FlexList unmarshals from either a JSON array or a bare value. Listing
// payloads sometimes carry a lone string where an array is expected (images,
// amenities, features); the bare form is wrapped into a one-element slice.
type FlexList[T any] []T

func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if data[0] != '[' {
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*f = FlexList[T]{one}
		return nil
	}
	var many []T
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*f = many
	return nil
}

// Slice returns the underlying slice.
func (f FlexList[T]) Slice() []T {
	return []T(f)
}
