package domain

import "encoding/json"

// MarshalJSON emits a single object when the result was narrowed to exactly
// one point by an item filter, and the full list otherwise.
func (r TurnoverResult) MarshalJSON() ([]byte, error) {
	if r.Single && len(r.Points) == 1 {
		return json.Marshal(r.Points[0])
	}
	return json.Marshal(r.Points)
}

// UnmarshalJSON accepts both the scalar and the list form.
func (r *TurnoverResult) UnmarshalJSON(data []byte) error {
	var points []TurnoverPoint
	if err := json.Unmarshal(data, &points); err == nil {
		r.Points = points
		r.Single = false
		return nil
	}
	var point TurnoverPoint
	if err := json.Unmarshal(data, &point); err != nil {
		return err
	}
	r.Points = []TurnoverPoint{point}
	r.Single = true
	return nil
}
