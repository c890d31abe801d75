package acvm

import "strconv"

// Witness is a non-negative identifier for a circuit variable.
type Witness uint32

// WitnessMap is a partial mapping from Witness to a field value. Insertions
// are monotone by value: inserting a different value at an already-assigned
// index fails with an UnsatisfiedConstrain error; inserting the same value
// again is a no-op success.
type WitnessMap[F Field[F]] struct {
	values map[Witness]F
}

// NewWitnessMap creates an empty witness map.
func NewWitnessMap[F Field[F]]() *WitnessMap[F] {
	return &WitnessMap[F]{values: make(map[Witness]F)}
}

// WitnessMapFrom seeds a witness map from a plain map, e.g. the host's
// initial witness.
func WitnessMapFrom[F Field[F]](initial map[Witness]F) *WitnessMap[F] {
	w := &WitnessMap[F]{values: make(map[Witness]F, len(initial))}
	for k, v := range initial {
		w.values[k] = v
	}
	return w
}

// Get returns the value assigned to id, if any.
func (w *WitnessMap[F]) Get(id Witness) (F, bool) {
	v, ok := w.values[id]
	return v, ok
}

// Len reports the number of assigned witnesses.
func (w *WitnessMap[F]) Len() int { return len(w.values) }

// Clone returns an independent copy of the map.
func (w *WitnessMap[F]) Clone() *WitnessMap[F] {
	c := &WitnessMap[F]{values: make(map[Witness]F, len(w.values))}
	for k, v := range w.values {
		c.values[k] = v
	}
	return c
}

// Raw exposes the underlying map read-only, for iteration by callers
// (e.g. the driver binaries rendering a final witness map as JSON).
func (w *WitnessMap[F]) Raw() map[Witness]F {
	return w.values
}

// Insert performs a monotone assignment: a first write succeeds
// unconditionally, a repeat write with an equal value is a no-op success,
// and a repeat write with a different value fails.
func (w *WitnessMap[F]) Insert(id Witness, value F) error {
	if existing, ok := w.values[id]; ok {
		if existing.Equal(value) {
			return nil
		}
		return &ACVMError[F]{
			Kind:     ErrUnsatisfiedConstrain,
			Location: UnresolvedLocation(),
			Payload: &AssertionResult[F]{
				String: stringPayload("witness " + strconv.FormatUint(uint64(id), 10) + " already assigned a different value"),
			},
		}
	}
	w.values[id] = value
	return nil
}

// Overwrite unconditionally replaces the value at id, bypassing monotone
// insertion. It is provided for debugger use only and deliberately
// circumvents the invariant Insert enforces; callers outside a debugger
// context should never call it.
func (w *WitnessMap[F]) Overwrite(id Witness, value F) (F, bool) {
	old, ok := w.values[id]
	w.values[id] = value
	return old, ok
}

func stringPayload(s string) *string { return &s }
